// Package settings provides parsing, generation, and validation of zshift's
// own Lua settings file (~/.config/zshift/zshift.lua).
//
// Settings are declarative: the file is executed in a sandboxed gopher-lua VM
// with a read-only platform table injected, then extracted into typed structs
// and validated. The file carries the backup tracking list, retention policy,
// and per-module feature-flag overrides for migration.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the complete zshift settings file.
type Settings struct {
	// Metadata about this machine's settings
	Meta Meta `json:"meta,omitempty"`

	// Files and directories the backup engine snapshots
	Track []TrackedItem `json:"track,omitempty"`

	// Feature-flag overrides applied before dependency resolution,
	// keyed by module id (e.g. "battery", "right_format")
	Modules map[string]bool `json:"modules,omitempty"`

	// Behavior options
	Options Options `json:"options,omitempty"`
}

// Meta contains metadata about the settings.
type Meta struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// TrackedItem is a file or directory the backup engine copies into snapshots.
type TrackedItem struct {
	// Path to the item (supports ~)
	Path string `json:"path"`

	// Recursive directory tracking (for directories)
	Recursive bool `json:"recursive,omitempty"`
}

// Options contains zshift behavior options.
type Options struct {
	// Age in days after which cleanup deletes snapshots
	BackupRetentionDays int `json:"backup_retention_days,omitempty"`
}

// Validate performs basic validation on Settings.
func (s *Settings) Validate() error {
	if len(s.Track) > MaxTrackedItems {
		return &ValidationError{
			Field:   "track",
			Message: fmt.Sprintf("too many tracked items (%d), maximum is %d", len(s.Track), MaxTrackedItems),
		}
	}

	for i, item := range s.Track {
		if item.Path == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("track[%d]", i),
				Message: "path cannot be empty",
			}
		}
		if err := validateTrackedPath(item.Path); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("track[%d].path", i),
				Message: err.Error(),
			}
		}
	}

	if s.Options.BackupRetentionDays < 0 {
		return &ValidationError{
			Field:   "options.backup_retention_days",
			Message: "must not be negative",
		}
	}

	return nil
}

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "settings validation failed for " + e.Field + ": " + e.Message
	}
	return "settings validation failed: " + e.Message
}

// validateTrackedPath rejects path traversal and absolute paths outside the
// home directory. Tracked items are always user configuration, so everything
// legitimate lives under ~.
func validateTrackedPath(path string) error {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("path traversal not allowed: %s", path)
		}
	}

	if filepath.IsAbs(path) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		if !strings.HasPrefix(filepath.Clean(path), home) {
			return fmt.Errorf("absolute paths outside home directory not allowed: %s", path)
		}
	}

	return nil
}

// ExpandPath resolves a leading ~ against the current home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") && path != "~" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
