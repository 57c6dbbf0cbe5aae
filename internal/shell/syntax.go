package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// SyntaxChecker is the pass/fail oracle used before a generated rc file is
// committed. Implementations must not execute the script.
type SyntaxChecker interface {
	// Check returns nil when path contains syntactically valid shell source.
	Check(ctx context.Context, path string) error
}

// SyntaxError reports a failed syntax check, carrying the shell's own
// diagnostic output.
type SyntaxError struct {
	Path   string
	Output string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax check failed for %s: %s", e.Path, e.Output)
}

// ZshChecker validates files with `zsh -n`, which parses without executing.
type ZshChecker struct {
	// Bin overrides the zsh binary path; empty means look up "zsh" on PATH.
	Bin string
}

// Check runs the shell in no-exec mode against path.
func (c *ZshChecker) Check(ctx context.Context, path string) error {
	bin := c.Bin
	if bin == "" {
		found, err := exec.LookPath("zsh")
		if err != nil {
			return fmt.Errorf("zsh not found on PATH: %w", err)
		}
		bin = found
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-n", path)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &SyntaxError{
			Path:   path,
			Output: stderr.String(),
		}
	}
	return nil
}
