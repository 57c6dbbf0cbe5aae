package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeChecker struct {
	err error
}

func (c fakeChecker) Check(ctx context.Context, path string) error {
	return c.err
}

func TestCommitShell_ReplacesLiveFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, ".zshrc")
	if err := os.WriteFile(dest, []byte("old content\n"), 0644); err != nil {
		t.Fatal(err)
	}

	doc := &Document{Path: dest, Content: "new content\n"}
	if err := CommitShell(context.Background(), doc, fakeChecker{}); err != nil {
		t.Fatalf("CommitShell() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new content\n" {
		t.Errorf("live file = %q", got)
	}
	if !doc.Validated {
		t.Error("document not marked validated")
	}
	assertNoTempFiles(t, dir)
}

func TestCommitShell_FailedCheckLeavesLiveFileUntouched(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, ".zshrc")
	if err := os.WriteFile(dest, []byte("old content\n"), 0644); err != nil {
		t.Fatal(err)
	}

	doc := &Document{Path: dest, Content: "broken content\n"}
	checkErr := errors.New("parse error near `}'")
	err := CommitShell(context.Background(), doc, fakeChecker{err: checkErr})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if !errors.Is(err, checkErr) {
		t.Error("checker error not wrapped")
	}
	if !strings.Contains(err.Error(), "live file unchanged") {
		t.Errorf("error message should state the live file is intact: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old content\n" {
		t.Errorf("live file modified on failed validation: %q", got)
	}
	assertNoTempFiles(t, dir)
}

func TestCommitShell_CreatesMissingDestination(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "config", "nested", ".zshrc")

	doc := &Document{Path: dest, Content: "content\n"}
	if err := CommitShell(context.Background(), doc, fakeChecker{}); err != nil {
		t.Fatalf("CommitShell() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("destination not created: %v", err)
	}
}

func TestCommitPrompt_RefusesUnvalidatedDocument(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "starship.toml")

	doc := &Document{Path: dest, Content: "add_newline = true\n"}
	err := CommitPrompt(doc)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("unvalidated document reached disk")
	}
}

func TestCommitPrompt_WritesValidatedDocument(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "starship.toml")

	doc := &Document{Path: dest, Content: "add_newline = true\n", Validated: true}
	if err := CommitPrompt(doc); err != nil {
		t.Fatalf("CommitPrompt() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "add_newline = true\n" {
		t.Errorf("written content = %q", got)
	}
	assertNoTempFiles(t, dir)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".zshift-tmp-") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}
