package shell

import (
	"os"
	"path/filepath"
	"strings"
)

// DetectShell detects the user's login shell. $SHELL is the only method
// implemented; when it is unset or unrecognized the result is ShellUnknown
// and the caller decides how loudly to complain.
func DetectShell() *DetectionResult {
	if shellPath := os.Getenv("SHELL"); shellPath != "" {
		shellType := parseShellFromPath(shellPath)
		if shellType.IsValid() {
			return &DetectionResult{
				Shell:     shellType,
				Method:    "$SHELL environment variable",
				ShellPath: shellPath,
			}
		}
	}

	return &DetectionResult{
		Shell:  ShellUnknown,
		Method: "detection failed",
	}
}

// parseShellFromPath extracts the shell type from a shell binary path
// (e.g. /usr/bin/zsh -> zsh).
func parseShellFromPath(shellPath string) ShellType {
	switch strings.ToLower(filepath.Base(shellPath)) {
	case "zsh":
		return ShellZsh
	case "bash":
		return ShellBash
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// ValidateShell validates that a shell type is supported
func ValidateShell(shell ShellType) error {
	if !shell.IsValid() {
		return &UnsupportedShellError{Shell: shell.String()}
	}
	return nil
}
