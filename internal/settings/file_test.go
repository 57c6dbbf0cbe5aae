package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrInit(t *testing.T) {
	t.Run("writes defaults when missing", func(t *testing.T) {
		path := FilePath(filepath.Join(t.TempDir(), "zshift"))

		s, err := LoadOrInit(context.Background(), NewParser(nil), path)
		if err != nil {
			t.Fatalf("LoadOrInit() error = %v", err)
		}
		if len(s.Track) == 0 {
			t.Error("defaults should track at least the zshrc")
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("settings file not written: %v", err)
		}
	})

	t.Run("loads existing file", func(t *testing.T) {
		path := FilePath(t.TempDir())
		content := `zshift = { options = { backup_retention_days = 7 } }`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		s, err := LoadOrInit(context.Background(), NewParser(nil), path)
		if err != nil {
			t.Fatalf("LoadOrInit() error = %v", err)
		}
		if s.Options.BackupRetentionDays != 7 {
			t.Errorf("retention = %d, want 7 from file", s.Options.BackupRetentionDays)
		}
	})

	t.Run("propagates parse errors", func(t *testing.T) {
		path := FilePath(t.TempDir())
		if err := os.WriteFile(path, []byte("zshift = {"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadOrInit(context.Background(), NewParser(nil), path); err == nil {
			t.Error("expected parse error")
		}
	})
}
