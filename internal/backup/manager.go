package backup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kettleby/zshift/internal/platform"
	"github.com/kettleby/zshift/internal/settings"
	"github.com/kettleby/zshift/internal/transaction"
)

const snapshotTimeLayout = "20060102T150405Z"

// ErrDeleteAborted is returned when the user declines the delete confirmation.
var ErrDeleteAborted = errors.New("delete aborted")

// Manager owns the snapshot store under a single base directory.
type Manager struct {
	baseDir    string
	tracked    []string
	logger     settings.Logger
	detector   platform.Detector
	now        func() time.Time
	version    string
	confirmIn  io.Reader
	confirmOut io.Writer
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for skip and cleanup messages.
func WithLogger(logger settings.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithDetector sets the platform detector used for snapshot metadata.
func WithDetector(detector platform.Detector) Option {
	return func(m *Manager) { m.detector = detector }
}

// WithClock overrides the time source; tests use it for stable snapshot ids.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithVersion records the tool version in snapshot metadata.
func WithVersion(version string) Option {
	return func(m *Manager) { m.version = version }
}

// WithConfirmIO sets the reader and writer for the delete confirmation prompt.
func WithConfirmIO(in io.Reader, out io.Writer) Option {
	return func(m *Manager) {
		m.confirmIn = in
		m.confirmOut = out
	}
}

// NewManager creates a snapshot manager over baseDir. tracked holds the
// absolute paths of the files and directories snapshots cover.
func NewManager(baseDir string, tracked []string, opts ...Option) *Manager {
	m := &Manager{
		baseDir:    baseDir,
		tracked:    tracked,
		logger:     settings.NopLogger(),
		detector:   platform.NewDetector(),
		now:        time.Now,
		version:    "dev",
		confirmIn:  os.Stdin,
		confirmOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultBaseDir returns the default snapshot store location,
// ~/.local/share/zshift/backups.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "zshift", "backups"), nil
}

// CreateSnapshot copies the tracked items into a new timestamped snapshot
// directory under the exclusive store lock. Tracked items that do not exist
// are skipped and recorded; any I/O failure removes the partial directory.
func (m *Manager) CreateSnapshot(ctx context.Context, name, description string) (*Snapshot, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	lock, err := transaction.AcquireLock(m.baseDir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	return m.createLocked(ctx, name, description, m.tracked)
}

// createLocked copies items into a new snapshot; the caller holds the store
// lock.
func (m *Manager) createLocked(ctx context.Context, name, description string, items []string) (*Snapshot, error) {
	createdAt := m.now().UTC()
	id := name + "_" + createdAt.Format(snapshotTimeLayout)
	snapDir := filepath.Join(m.baseDir, id)

	if err := os.MkdirAll(m.baseDir, 0700); err != nil {
		return nil, &BackupIOError{Op: "create store", Path: m.baseDir, Err: err}
	}
	if err := os.Mkdir(snapDir, 0700); err != nil {
		return nil, &BackupIOError{Op: "create snapshot dir", Path: snapDir, Err: err}
	}

	fail := func(op, path string, err error) (*Snapshot, error) {
		os.RemoveAll(snapDir)
		return nil, &BackupIOError{Op: op, Path: path, Err: err}
	}

	var records []manifestRecord
	var skipped []string
	var totalSize int64

	for _, tracked := range items {
		if err := ctx.Err(); err != nil {
			return fail("copy", tracked, err)
		}

		info, err := os.Stat(tracked)
		if errors.Is(err, os.ErrNotExist) {
			skipped = append(skipped, tracked)
			m.logger.Info("tracked item missing, skipped", "path", tracked)
			continue
		}
		if err != nil {
			return fail("stat", tracked, err)
		}

		if err := copyPath(tracked, mirrorPath(snapDir, tracked), info.IsDir()); err != nil {
			return fail("copy", tracked, err)
		}

		kind := kindFile
		size := info.Size()
		if info.IsDir() {
			kind = kindDir
			if size, err = treeSize(tracked); err != nil {
				return fail("measure", tracked, err)
			}
		}
		records = append(records, manifestRecord{
			Kind:  kind,
			Path:  tracked,
			Size:  size,
			MTime: info.ModTime(),
		})
		totalSize += size
	}

	if err := writeManifest(filepath.Join(snapDir, manifestFileName), records); err != nil {
		return fail("write manifest", snapDir, err)
	}

	meta := &Metadata{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Creator:     currentUser(),
		ToolVersion: m.version,
		CreatedAt:   createdAt,
		Items:       len(records),
		SizeBytes:   totalSize,
		Skipped:     skipped,
		Host:        hostInfo(ctx, m.detector),
	}
	if err := writeMetadata(filepath.Join(snapDir, metadataFileName), meta); err != nil {
		return fail("write metadata", snapDir, err)
	}

	if err := m.validateDir(id, snapDir); err != nil {
		os.RemoveAll(snapDir)
		return nil, err
	}

	return &Snapshot{
		ID:        id,
		Name:      name,
		Dir:       snapDir,
		CreatedAt: createdAt,
		Items:     len(records),
		Skipped:   skipped,
		SizeBytes: totalSize,
	}, nil
}

// ListSnapshots returns a summary per snapshot, oldest first. Directories
// whose metadata cannot be read are skipped with a warning.
func (m *Manager) ListSnapshots() ([]Summary, error) {
	entries, err := os.ReadDir(m.baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot store: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if !entry.IsDir() || !strings.Contains(entry.Name(), "_") {
			continue
		}
		meta, err := readMetadata(filepath.Join(m.baseDir, entry.Name(), metadataFileName))
		if err != nil {
			m.logger.Warn("unreadable snapshot skipped in listing", "id", entry.Name(), "error", err)
			continue
		}
		summaries = append(summaries, Summary{
			ID:          entry.Name(),
			Name:        meta.Name,
			CreatedAt:   meta.CreatedAt,
			Items:       meta.Items,
			SizeBytes:   meta.SizeBytes,
			Description: meta.Description,
		})
	}

	sort.Slice(summaries, func(a, b int) bool {
		return snapshotSortKey(summaries[a].ID) < snapshotSortKey(summaries[b].ID)
	})
	return summaries, nil
}

// snapshotSortKey orders by the timestamp suffix first so snapshots list
// chronologically regardless of name.
func snapshotSortKey(id string) string {
	idx := strings.LastIndex(id, "_")
	if idx < 0 {
		return id
	}
	return id[idx+1:] + "\x00" + id[:idx]
}

// ValidateSnapshot checks a snapshot's structure: the directory exists, the
// metadata parses, and the manifest exists and parses. Contents are not
// compared byte for byte.
func (m *Manager) ValidateSnapshot(id string) error {
	snapDir := filepath.Join(m.baseDir, id)
	if info, err := os.Stat(snapDir); err != nil || !info.IsDir() {
		return &NotFoundError{ID: id}
	}
	return m.validateDir(id, snapDir)
}

func (m *Manager) validateDir(id, snapDir string) error {
	if _, err := readMetadata(filepath.Join(snapDir, metadataFileName)); err != nil {
		return &IntegrityError{ID: id, Reason: fmt.Sprintf("metadata: %v", err)}
	}
	if _, err := readManifest(filepath.Join(snapDir, manifestFileName)); err != nil {
		return &IntegrityError{ID: id, Reason: fmt.Sprintf("manifest: %v", err)}
	}
	return nil
}

// RestoreSnapshot copies a snapshot's items back to their original locations.
// A pre-restore safety snapshot is always taken first, so the state being
// overwritten can itself be restored. The source snapshot is never written to.
func (m *Manager) RestoreSnapshot(ctx context.Context, id string) (*RestoreReport, error) {
	lock, err := transaction.AcquireLock(m.baseDir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	snapDir := filepath.Join(m.baseDir, id)
	if info, err := os.Stat(snapDir); err != nil || !info.IsDir() {
		return nil, &NotFoundError{ID: id}
	}
	if err := m.validateDir(id, snapDir); err != nil {
		return nil, err
	}

	records, err := readManifest(filepath.Join(snapDir, manifestFileName))
	if err != nil {
		return nil, &IntegrityError{ID: id, Reason: fmt.Sprintf("manifest: %v", err)}
	}

	// The safety snapshot covers the manifest's paths as well as today's
	// tracked list; the two can diverge when tracking changed after the
	// snapshot was taken, and every path about to be overwritten needs a
	// safety copy.
	safetyItems := make([]string, 0, len(m.tracked)+len(records))
	seen := make(map[string]struct{}, len(m.tracked)+len(records))
	for _, path := range m.tracked {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		safetyItems = append(safetyItems, path)
	}
	for _, rec := range records {
		if _, dup := seen[rec.Path]; dup {
			continue
		}
		seen[rec.Path] = struct{}{}
		safetyItems = append(safetyItems, rec.Path)
	}

	safety, err := m.createLocked(ctx, "pre_restore", "automatic safety snapshot before restoring "+id, safetyItems)
	if err != nil {
		return nil, fmt.Errorf("safety snapshot failed, restore aborted (no files were modified): %w", err)
	}

	report := &RestoreReport{
		SnapshotID: id,
		SafetyID:   safety.ID,
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		src := mirrorPath(snapDir, rec.Path)
		if err := copyPath(src, rec.Path, rec.Kind == kindDir); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", rec.Path, err))
			m.logger.Error("restore item failed", "path", rec.Path, "error", err)
			continue
		}
		report.Restored++
	}

	return report, nil
}

// CleanupOlderThan removes snapshots whose directory mtime is older than the
// given number of days, returning how many were (or would be) removed.
func (m *Manager) CleanupOlderThan(days int, dryRun bool) (int, error) {
	if days < 1 {
		return 0, fmt.Errorf("retention must be at least 1 day, got %d", days)
	}

	entries, err := os.ReadDir(m.baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read snapshot store: %w", err)
	}

	cutoff := m.now().Add(-time.Duration(days) * 24 * time.Hour)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.Contains(entry.Name(), "_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		removed++
		if dryRun {
			m.logger.Info("would remove snapshot", "id", entry.Name())
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.baseDir, entry.Name())); err != nil {
			return removed - 1, fmt.Errorf("remove snapshot %s: %w", entry.Name(), err)
		}
		m.logger.Info("removed snapshot", "id", entry.Name())
	}

	return removed, nil
}

// DeleteSnapshot removes a single snapshot, prompting for confirmation unless
// force is set. Declining returns ErrDeleteAborted.
func (m *Manager) DeleteSnapshot(id string, force bool) error {
	snapDir := filepath.Join(m.baseDir, id)
	if info, err := os.Stat(snapDir); err != nil || !info.IsDir() {
		return &NotFoundError{ID: id}
	}

	if !force {
		fmt.Fprintf(m.confirmOut, "Delete snapshot %s? [y/N]: ", id)
		answer, err := bufio.NewReader(m.confirmIn).ReadString('\n')
		if err != nil && answer == "" {
			return ErrDeleteAborted
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			return ErrDeleteAborted
		}
	}

	if err := os.RemoveAll(snapDir); err != nil {
		return fmt.Errorf("remove snapshot %s: %w", id, err)
	}
	return nil
}

// validateName rejects names that would break out of the store or produce an
// unparseable snapshot id.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("snapshot name must not be empty")
	}
	if strings.ContainsAny(name, "/\\ \t\n") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	return nil
}
