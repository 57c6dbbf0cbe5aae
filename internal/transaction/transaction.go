// Package transaction provides the exclusive snapshot lock and the migration
// journal: a durable record of each migration run, written atomically so a
// crashed run can be inspected afterwards.
package transaction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State represents the current state of a journal or artifact entry.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Journal records a single migration run from start to finish.
type Journal struct {
	Version    int        `json:"version"` // Schema version for future evolution
	ID         string     `json:"id"`      // UUID for unique identification
	Timestamp  time.Time  `json:"timestamp"`
	SourcePath string     `json:"source_path"`           // rc file the migration read
	SnapshotID string     `json:"snapshot_id,omitempty"` // pre-migration snapshot, once taken
	DryRun     bool       `json:"dry_run"`
	Artifacts  []Artifact `json:"artifacts"`
	Warnings   []string   `json:"warnings,omitempty"`
	State      State      `json:"state"`
}

// Artifact is the journal entry for one output file of the run.
type Artifact struct {
	Path      string `json:"path"`
	State     State  `json:"state"`
	LastError string `json:"last_error,omitempty"`
}

// New creates a journal for a migration run over the given source rc file,
// with one pending artifact entry per output path.
func New(sourcePath string, artifactPaths []string, dryRun bool) *Journal {
	artifacts := make([]Artifact, 0, len(artifactPaths))
	for _, path := range artifactPaths {
		artifacts = append(artifacts, Artifact{Path: path, State: StatePending})
	}

	return &Journal{
		Version:    1,
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		SourcePath: sourcePath,
		DryRun:     dryRun,
		Artifacts:  artifacts,
		State:      StateInProgress,
	}
}

// Save writes the journal to disk atomically.
// Uses write-then-rename pattern for atomicity.
func (j *Journal) Save(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}

	filename := fmt.Sprintf("migration-%s.json", j.ID)
	finalPath := filepath.Join(dir, filename)
	tmpPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temporary journal file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename journal file: %w", err)
	}

	// Sync directory for durability
	df, err := os.Open(dir)
	if err == nil {
		if syncErr := df.Sync(); syncErr != nil {
			df.Close()
			return fmt.Errorf("sync directory: %w", syncErr)
		}
		df.Close()
	}

	return nil
}

// Load reads a journal from disk.
func Load(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal file: %w", err)
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal journal: %w", err)
	}

	return &j, nil
}

// LoadLatest reads the most recent journal in dir, by timestamp. Returns
// os.ErrNotExist when the directory holds no journals.
func LoadLatest(dir string) (*Journal, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read journal directory: %w", err)
	}

	var journals []*Journal
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "migration-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		j, err := Load(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		journals = append(journals, j)
	}
	if len(journals) == 0 {
		return nil, os.ErrNotExist
	}

	sort.Slice(journals, func(a, b int) bool {
		return journals[a].Timestamp.After(journals[b].Timestamp)
	})
	return journals[0], nil
}

// UpdateArtifact updates the state of a specific artifact in the journal.
func (j *Journal) UpdateArtifact(path string, state State, err error) {
	for i := range j.Artifacts {
		if j.Artifacts[i].Path == path {
			j.Artifacts[i].State = state
			if err != nil {
				j.Artifacts[i].LastError = err.Error()
			} else {
				j.Artifacts[i].LastError = ""
			}
			break
		}
	}
}

// AddWarning appends a warning message to the run record.
func (j *Journal) AddWarning(msg string) {
	j.Warnings = append(j.Warnings, msg)
}

// AllArtifactsCompleted returns true if every artifact is in completed state.
func (j *Journal) AllArtifactsCompleted() bool {
	for _, a := range j.Artifacts {
		if a.State != StateCompleted {
			return false
		}
	}
	return len(j.Artifacts) > 0
}

// Finish sets the journal's terminal state from its artifacts.
func (j *Journal) Finish() {
	if j.AllArtifactsCompleted() {
		j.State = StateCompleted
	} else {
		j.State = StateFailed
	}
}
