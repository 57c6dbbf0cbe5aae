package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kettleby/zshift/internal/shell"
)

// CommitShell validates the shell document with the target shell's syntax
// checker and atomically replaces the live file. On any failure the temp
// file is removed and the live file is left untouched.
func CommitShell(ctx context.Context, doc *Document, checker shell.SyntaxChecker) error {
	if doc == nil || doc.Path == "" {
		return fmt.Errorf("commit: document has no destination path")
	}

	tmpPath, err := writeTemp(doc.Path, doc.Content)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if err := checker.Check(ctx, tmpPath); err != nil {
		return &ValidationError{
			Path:   doc.Path,
			Reason: "shell syntax check rejected the generated file",
			Cause:  err,
		}
	}
	doc.Validated = true

	if err := os.Rename(tmpPath, doc.Path); err != nil {
		return fmt.Errorf("replace %s: %w", doc.Path, err)
	}
	return nil
}

// CommitPrompt atomically writes an already-validated prompt document. A
// document that never passed validation is refused.
func CommitPrompt(doc *Document) error {
	if doc == nil || doc.Path == "" {
		return fmt.Errorf("commit: document has no destination path")
	}
	if !doc.Validated {
		return &ValidationError{
			Path:   doc.Path,
			Reason: "document was not validated before commit",
		}
	}

	tmpPath, err := writeTemp(doc.Path, doc.Content)
	if err != nil {
		return err
	}

	if err := os.Rename(tmpPath, doc.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", doc.Path, err)
	}
	return nil
}

// writeTemp writes content to a temp file in the destination's directory so
// the final rename is atomic, syncing before returning.
func writeTemp(destPath, content string) (string, error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".zshift-tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tmpPath, nil
}
