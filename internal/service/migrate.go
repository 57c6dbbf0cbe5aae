// Package service provides high-level business logic for zshift operations.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kettleby/zshift/internal/backup"
	"github.com/kettleby/zshift/internal/feature"
	"github.com/kettleby/zshift/internal/generate"
	"github.com/kettleby/zshift/internal/settings"
	"github.com/kettleby/zshift/internal/shell"
	"github.com/kettleby/zshift/internal/shellparse"
	"github.com/kettleby/zshift/internal/transaction"
)

// ShellConfigParser extracts user content from an existing rc file.
type ShellConfigParser interface {
	Parse(rawText string) (*shellparse.Result, error)
}

// DocumentGenerator renders both output documents from resolved flags and
// parsed user content.
type DocumentGenerator interface {
	Generate(flags map[feature.FlagID]bool, parsed *shellparse.Result, shellPath, promptPath string, now time.Time) (shellDoc, promptDoc *generate.Document, err error)
}

// SnapshotCreator takes the pre-migration snapshot.
type SnapshotCreator interface {
	CreateSnapshot(ctx context.Context, name, description string) (*backup.Snapshot, error)
}

// MigrationService orchestrates a migration run end to end.
type MigrationService struct {
	parser    ShellConfigParser
	generator DocumentGenerator
	backups   SnapshotCreator
	checker   shell.SyntaxChecker
	clock     Clock
	logger    settings.Logger
	stateDir  string
}

// NewMigrationService creates a migration service with dependency injection.
// stateDir holds the migration journals.
func NewMigrationService(
	parser ShellConfigParser,
	generator DocumentGenerator,
	backups SnapshotCreator,
	checker shell.SyntaxChecker,
	clock Clock,
	logger settings.Logger,
	stateDir string,
) *MigrationService {
	return &MigrationService{
		parser:    parser,
		generator: generator,
		backups:   backups,
		checker:   checker,
		clock:     clock,
		logger:    logger,
		stateDir:  stateDir,
	}
}

// MigrateRequest contains the parameters for a migration run.
type MigrateRequest struct {
	// SourcePath is the rc file to migrate from; a missing file migrates an
	// empty configuration.
	SourcePath string
	// ShellPath and PromptPath are the output destinations.
	ShellPath  string
	PromptPath string
	// Settings carries per-module flag overrides.
	Settings *settings.Settings
	DryRun   bool
}

// MigrateResult contains the results of a migration run.
type MigrateResult struct {
	JournalID  string
	SnapshotID string
	Flags      map[feature.FlagID]bool
	Warnings   []shellparse.ParseWarning
	ShellDoc   *generate.Document
	PromptDoc  *generate.Document
	DryRun     bool
}

// Execute performs the migration: read and parse the source rc file, apply
// settings overrides, resolve flags, snapshot the tracked files, then
// generate and commit both documents, journaling each step.
func (s *MigrationService) Execute(ctx context.Context, req MigrateRequest) (*MigrateResult, error) {
	raw, err := s.readSource(req.SourcePath)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.SourcePath, err)
	}
	for _, w := range parsed.Warnings {
		s.logger.Warn("parse warning", "source", req.SourcePath, "line", w.Line, "message", w.Message)
	}

	flags := s.resolveFlags(req.Settings)

	shellDoc, promptDoc, err := s.generator.Generate(flags, parsed, req.ShellPath, req.PromptPath, s.clock.Now())
	if err != nil {
		return nil, err
	}

	result := &MigrateResult{
		Flags:     flags,
		Warnings:  parsed.Warnings,
		ShellDoc:  shellDoc,
		PromptDoc: promptDoc,
		DryRun:    req.DryRun,
	}

	if req.DryRun {
		return result, nil
	}

	journal := transaction.New(req.SourcePath, []string{req.ShellPath, req.PromptPath}, false)
	result.JournalID = journal.ID
	for _, w := range parsed.Warnings {
		journal.AddWarning(fmt.Sprintf("line %d: %s", w.Line, w.Message))
	}
	if err := journal.Save(s.stateDir); err != nil {
		return nil, fmt.Errorf("save migration journal: %w", err)
	}

	snap, err := s.backups.CreateSnapshot(ctx, "pre_migrate", "automatic snapshot before migration of "+req.SourcePath)
	if err != nil {
		journal.Finish()
		s.saveJournal(journal)
		return nil, fmt.Errorf("pre-migration snapshot failed, nothing was written: %w", err)
	}
	result.SnapshotID = snap.ID
	journal.SnapshotID = snap.ID
	if err := journal.Save(s.stateDir); err != nil {
		return nil, fmt.Errorf("save migration journal: %w", err)
	}

	journal.UpdateArtifact(req.ShellPath, transaction.StateInProgress, nil)
	s.saveJournal(journal)
	if err := generate.CommitShell(ctx, shellDoc, s.checker); err != nil {
		journal.UpdateArtifact(req.ShellPath, transaction.StateFailed, err)
		journal.Finish()
		s.saveJournal(journal)
		return nil, fmt.Errorf("%w; %s was not modified either", err, req.PromptPath)
	}
	journal.UpdateArtifact(req.ShellPath, transaction.StateCompleted, nil)
	s.saveJournal(journal)

	journal.UpdateArtifact(req.PromptPath, transaction.StateInProgress, nil)
	s.saveJournal(journal)
	if err := generate.CommitPrompt(promptDoc); err != nil {
		journal.UpdateArtifact(req.PromptPath, transaction.StateFailed, err)
		journal.Finish()
		s.saveJournal(journal)
		return nil, fmt.Errorf("%w; %s was already updated, restore snapshot %s to roll back", err, req.ShellPath, snap.ID)
	}
	journal.UpdateArtifact(req.PromptPath, transaction.StateCompleted, nil)

	journal.Finish()
	if err := journal.Save(s.stateDir); err != nil {
		return nil, fmt.Errorf("save migration journal: %w", err)
	}

	return result, nil
}

// readSource reads the rc file; a missing file is an empty migration, not an
// error. A path that exists but is not a regular file fails before anything
// is written.
func (s *MigrationService) readSource(path string) (string, error) {
	exists, err := shell.RCFileExists(path)
	if err != nil {
		return "", err
	}
	if !exists {
		s.logger.Info("source rc file missing, migrating an empty configuration", "path", path)
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// resolveFlags applies settings overrides to the defaults, then resolves the
// dependency graph to a consistent set. Overrides for unknown module ids are
// ignored with a warning.
func (s *MigrationService) resolveFlags(cfg *settings.Settings) map[feature.FlagID]bool {
	flags := feature.DefaultFlags()

	if cfg != nil {
		for id, enabled := range cfg.Modules {
			flagID := feature.FlagID(id)
			if _, known := flags[flagID]; !known {
				s.logger.Warn("unknown module in settings ignored", "module", id)
				continue
			}
			flags[flagID] = enabled
		}
	}

	return feature.Resolve(flags, feature.DefaultEdges(), feature.DefaultContainers())
}

// saveJournal persists journal progress; a failure here must not mask the
// primary error, so it is only logged.
func (s *MigrationService) saveJournal(journal *transaction.Journal) {
	if err := journal.Save(s.stateDir); err != nil {
		s.logger.Error("failed to save migration journal", "id", journal.ID, "error", err)
	}
}

// DefaultStateDir returns the journal directory, ~/.local/share/zshift/.txn.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "zshift", ".txn"), nil
}
