// Package testutil provides utilities for testing zshift in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points HOME at a per-test temp directory so tests never touch
// the user's real rc files, settings, or snapshot store. Everything zshift
// resolves through the home directory (~/.zshrc, ~/.config/zshift,
// ~/.local/share/zshift) lands inside the sandbox.
//
// The cleanup is handled by t.TempDir(), so callers don't need to clean up.
// Returns the sandbox home path.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	dirs := []string{
		filepath.Join(home, ".config"),
		filepath.Join(home, ".local", "share", "zshift"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return home
}
