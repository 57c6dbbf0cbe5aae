package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kettleby/zshift/internal/backup"
	"github.com/kettleby/zshift/internal/feature"
	"github.com/kettleby/zshift/internal/generate"
	"github.com/kettleby/zshift/internal/platform"
	"github.com/kettleby/zshift/internal/settings"
	"github.com/kettleby/zshift/internal/shell"
	"github.com/kettleby/zshift/internal/shellparse"
	"github.com/kettleby/zshift/internal/transaction"
)

type passChecker struct{}

func (passChecker) Check(ctx context.Context, path string) error { return nil }

type failChecker struct{ err error }

func (c failChecker) Check(ctx context.Context, path string) error { return c.err }

type failingSnapshots struct{ err error }

func (f failingSnapshots) CreateSnapshot(ctx context.Context, name, description string) (*backup.Snapshot, error) {
	return nil, f.err
}

type migrateFixture struct {
	svc        *MigrationService
	home       string
	stateDir   string
	backupDir  string
	sourcePath string
	shellPath  string
	promptPath string
}

func newMigrateFixture(t *testing.T, checker shell.SyntaxChecker) *migrateFixture {
	t.Helper()
	home := t.TempDir()
	f := &migrateFixture{
		home:       home,
		stateDir:   filepath.Join(home, ".txn"),
		backupDir:  filepath.Join(home, "backups"),
		sourcePath: filepath.Join(home, ".zshrc"),
		shellPath:  filepath.Join(home, ".zshrc"),
		promptPath: filepath.Join(home, "starship.toml"),
	}

	backups := backup.NewManager(f.backupDir, []string{f.sourcePath},
		backup.WithDetector(&platform.StaticDetector{Info: platform.Info{OS: "linux", Arch: "amd64"}}))
	f.svc = NewMigrationService(
		shellparse.NewParser(generate.ReservedNames()),
		generate.NewGenerator(shell.StaticToolChecker{}),
		backups,
		checker,
		TestClock{FixedTime: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)},
		settings.NopLogger(),
		f.stateDir,
	)
	return f
}

func (f *migrateFixture) request(dryRun bool) MigrateRequest {
	return MigrateRequest{
		SourcePath: f.sourcePath,
		ShellPath:  f.shellPath,
		PromptPath: f.promptPath,
		DryRun:     dryRun,
	}
}

func TestMigrationServiceExecute(t *testing.T) {
	t.Run("migrates an existing rc file", func(t *testing.T) {
		f := newMigrateFixture(t, passChecker{})
		source := "alias gs='git status'\nexport EDITOR=vim\n"
		if err := os.WriteFile(f.sourcePath, []byte(source), 0644); err != nil {
			t.Fatal(err)
		}

		result, err := f.svc.Execute(context.Background(), f.request(false))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		shellOut, err := os.ReadFile(f.shellPath)
		if err != nil {
			t.Fatalf("shell doc not written: %v", err)
		}
		if !strings.Contains(string(shellOut), "alias gs='git status'") {
			t.Error("user alias not preserved")
		}
		lines := strings.Split(strings.TrimRight(string(shellOut), "\n"), "\n")
		if lines[len(lines)-1] != `eval "$(starship init zsh)"` {
			t.Errorf("final line = %q", lines[len(lines)-1])
		}

		promptOut, err := os.ReadFile(f.promptPath)
		if err != nil {
			t.Fatalf("prompt doc not written: %v", err)
		}
		if !strings.Contains(string(promptOut), "[directory]") {
			t.Error("prompt doc missing expected module")
		}

		// The pre-migration snapshot holds the original rc content.
		if !strings.HasPrefix(result.SnapshotID, "pre_migrate_") {
			t.Errorf("snapshot id = %q", result.SnapshotID)
		}
		snapMirror := filepath.Join(f.backupDir, result.SnapshotID, "data",
			strings.TrimPrefix(f.sourcePath, string(filepath.Separator)))
		saved, err := os.ReadFile(snapMirror)
		if err != nil {
			t.Fatalf("snapshot missing source file: %v", err)
		}
		if string(saved) != source {
			t.Errorf("snapshot content = %q", saved)
		}

		// The journal reached its terminal state.
		journal, err := transaction.LoadLatest(f.stateDir)
		if err != nil {
			t.Fatalf("journal not saved: %v", err)
		}
		if journal.ID != result.JournalID {
			t.Errorf("journal id = %q, want %q", journal.ID, result.JournalID)
		}
		if journal.State != transaction.StateCompleted {
			t.Errorf("journal state = %q", journal.State)
		}
		if journal.SnapshotID != result.SnapshotID {
			t.Errorf("journal snapshot = %q", journal.SnapshotID)
		}
	})

	t.Run("missing source migrates an empty configuration", func(t *testing.T) {
		f := newMigrateFixture(t, passChecker{})

		result, err := f.svc.Execute(context.Background(), f.request(false))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if len(result.Warnings) != 0 {
			t.Errorf("warnings = %v", result.Warnings)
		}
		if _, err := os.Stat(f.shellPath); err != nil {
			t.Errorf("shell doc not written: %v", err)
		}
	})

	t.Run("irregular source file fails before any write", func(t *testing.T) {
		f := newMigrateFixture(t, passChecker{})
		if err := os.Mkdir(f.sourcePath, 0755); err != nil {
			t.Fatal(err)
		}

		_, err := f.svc.Execute(context.Background(), f.request(false))
		var rcErr *shell.RCFileError
		if !errors.As(err, &rcErr) {
			t.Fatalf("error = %v, want *shell.RCFileError", err)
		}

		if _, statErr := os.Stat(f.promptPath); !os.IsNotExist(statErr) {
			t.Error("prompt doc written despite unreadable source")
		}
		if _, statErr := os.Stat(f.backupDir); !os.IsNotExist(statErr) {
			t.Error("snapshot taken despite unreadable source")
		}
		if _, statErr := os.Stat(f.stateDir); !os.IsNotExist(statErr) {
			t.Error("journal written despite unreadable source")
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		f := newMigrateFixture(t, passChecker{})
		if err := os.WriteFile(f.sourcePath, []byte("alias x='y'\n"), 0644); err != nil {
			t.Fatal(err)
		}

		result, err := f.svc.Execute(context.Background(), f.request(true))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !result.DryRun {
			t.Error("result not marked dry run")
		}
		if result.ShellDoc == nil || !strings.Contains(result.ShellDoc.Content, "alias x='y'") {
			t.Error("dry run should still render the documents")
		}

		// Source untouched, no prompt doc, no snapshot, no journal.
		got, err := os.ReadFile(f.sourcePath)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "alias x='y'\n" {
			t.Errorf("source modified: %q", got)
		}
		if _, err := os.Stat(f.promptPath); !os.IsNotExist(err) {
			t.Error("prompt doc written during dry run")
		}
		if _, err := os.Stat(f.backupDir); !os.IsNotExist(err) {
			t.Error("snapshot taken during dry run")
		}
		if _, err := os.Stat(f.stateDir); !os.IsNotExist(err) {
			t.Error("journal written during dry run")
		}
	})

	t.Run("failed shell validation leaves both outputs untouched", func(t *testing.T) {
		f := newMigrateFixture(t, failChecker{err: errors.New("parse error near `}'")})
		original := "alias gs='git status'\n"
		if err := os.WriteFile(f.sourcePath, []byte(original), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := f.svc.Execute(context.Background(), f.request(false))
		if err == nil {
			t.Fatal("expected validation error")
		}
		var verr *generate.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("error = %v, want *generate.ValidationError", err)
		}
		if !strings.Contains(err.Error(), f.promptPath) {
			t.Errorf("error should name the untouched prompt file: %v", err)
		}

		got, readErr := os.ReadFile(f.shellPath)
		if readErr != nil {
			t.Fatal(readErr)
		}
		if string(got) != original {
			t.Errorf("live rc file modified: %q", got)
		}
		if _, statErr := os.Stat(f.promptPath); !os.IsNotExist(statErr) {
			t.Error("prompt doc written despite failed shell validation")
		}

		journal, jerr := transaction.LoadLatest(f.stateDir)
		if jerr != nil {
			t.Fatalf("journal not saved: %v", jerr)
		}
		if journal.State != transaction.StateFailed {
			t.Errorf("journal state = %q", journal.State)
		}
	})

	t.Run("snapshot failure aborts before any write", func(t *testing.T) {
		f := newMigrateFixture(t, passChecker{})
		snapErr := errors.New("disk full")
		f.svc.backups = failingSnapshots{err: snapErr}

		original := "alias gs='git status'\n"
		if err := os.WriteFile(f.sourcePath, []byte(original), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := f.svc.Execute(context.Background(), f.request(false))
		if !errors.Is(err, snapErr) {
			t.Fatalf("error = %v, want wrapped snapshot error", err)
		}
		if !strings.Contains(err.Error(), "nothing was written") {
			t.Errorf("error should state nothing was written: %v", err)
		}

		got, readErr := os.ReadFile(f.shellPath)
		if readErr != nil {
			t.Fatal(readErr)
		}
		if string(got) != original {
			t.Errorf("live rc file modified: %q", got)
		}
	})
}

func TestMigrationServiceResolveFlags(t *testing.T) {
	f := newMigrateFixture(t, passChecker{})

	t.Run("defaults resolve with battery off", func(t *testing.T) {
		flags := f.svc.resolveFlags(nil)
		if flags[feature.FlagBattery] {
			t.Error("battery should default off")
		}
		if !flags[feature.FlagRightFormat] {
			t.Error("right_format should survive with cmd_duration and time on")
		}
	})

	t.Run("overrides cascade through resolution", func(t *testing.T) {
		cfg := &settings.Settings{Modules: map[string]bool{
			"cmd_duration": false,
			"time":         false,
			"battery":      false,
		}}
		flags := f.svc.resolveFlags(cfg)
		if flags[feature.FlagRightFormat] {
			t.Error("right_format should be forced off when all children are off")
		}
	})

	t.Run("unknown module ids are ignored", func(t *testing.T) {
		cfg := &settings.Settings{Modules: map[string]bool{"warp_drive": true}}
		flags := f.svc.resolveFlags(cfg)
		if _, exists := flags[feature.FlagID("warp_drive")]; exists {
			t.Error("unknown module should not enter the flag set")
		}
	})
}

func TestClockImplementations(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := (TestClock{FixedTime: fixed}).Now(); !got.Equal(fixed) {
		t.Errorf("TestClock.Now() = %v", got)
	}

	before := time.Now()
	got := RealClock{}.Now()
	if got.Before(before.Add(-time.Second)) || got.After(time.Now().Add(time.Second)) {
		t.Errorf("RealClock.Now() = %v", got)
	}
}
