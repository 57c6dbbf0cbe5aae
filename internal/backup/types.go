// Package backup manages timestamped snapshots of the user's tracked
// configuration files: creation, listing, validation, restore, and retention.
//
// A snapshot is a directory <base>/<name>_<timestamp> holding a data/ mirror
// of the tracked items, a manifest listing them, and a metadata.toml record.
// Snapshot creation fails closed: any copy or write error removes the partial
// directory so the store never holds a half-written snapshot.
package backup

import (
	"fmt"
	"time"
)

// Snapshot describes a snapshot that was just created.
type Snapshot struct {
	ID        string
	Name      string
	Dir       string
	CreatedAt time.Time
	Items     int
	Skipped   []string
	SizeBytes int64
}

// Summary is one row of a snapshot listing.
type Summary struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	Items       int
	SizeBytes   int64
	Description string
}

// RestoreReport describes the outcome of a restore operation.
type RestoreReport struct {
	SnapshotID string
	// SafetyID is the pre-restore safety snapshot taken before any live file
	// was touched.
	SafetyID string
	Restored int
	Failed   int
	Failures []string
}

// NotFoundError reports a snapshot id that does not exist in the store.
// Nothing was created or modified.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("snapshot %q not found (no files were modified)", e.ID)
}

// IntegrityError reports a snapshot that failed structural validation. The
// operation that found it was refused before touching any live file.
type IntegrityError struct {
	ID     string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("snapshot %q failed integrity check: %s (no files were modified)", e.ID, e.Reason)
}

// BackupIOError reports an I/O failure while building a snapshot. The partial
// snapshot directory was removed.
type BackupIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *BackupIOError) Error() string {
	return fmt.Sprintf("backup %s %s: %v (partial snapshot removed, live files untouched)", e.Op, e.Path, e.Err)
}

func (e *BackupIOError) Unwrap() error {
	return e.Err
}
