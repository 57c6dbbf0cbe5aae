package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kettleby/zshift/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	home := testutil.SetupTestEnv(t)

	if got := os.Getenv("HOME"); got != home {
		t.Errorf("HOME = %q, want %q", got, home)
	}
	if resolved, err := os.UserHomeDir(); err != nil || resolved != home {
		t.Errorf("UserHomeDir() = %q, %v, want %q", resolved, err, home)
	}

	for _, dir := range []string{
		filepath.Join(home, ".config"),
		filepath.Join(home, ".local", "share", "zshift"),
	} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory %s does not exist", dir)
		}
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	home1 := testutil.SetupTestEnv(t)

	t.Run("subtest", func(t *testing.T) {
		home2 := testutil.SetupTestEnv(t)
		if home1 == home2 {
			t.Error("expected different temp directories for different test contexts")
		}
	})
}
