package backup

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/kettleby/zshift/internal/platform"
)

const metadataFileName = "metadata.toml"

// Metadata is the metadata.toml record written into every snapshot directory.
type Metadata struct {
	ID          string    `toml:"id"`
	Name        string    `toml:"name"`
	Description string    `toml:"description,omitempty"`
	Creator     string    `toml:"creator"`
	ToolVersion string    `toml:"tool_version"`
	CreatedAt   time.Time `toml:"created_at"`
	Items       int       `toml:"items"`
	SizeBytes   int64     `toml:"size_bytes"`
	Skipped     []string  `toml:"skipped,omitempty"`
	Host        HostInfo  `toml:"host"`
}

// HostInfo records where the snapshot was taken.
type HostInfo struct {
	Hostname string `toml:"hostname,omitempty"`
	OS       string `toml:"os"`
	Arch     string `toml:"arch"`
	Platform string `toml:"platform,omitempty"`
	Family   string `toml:"family,omitempty"`
	Version  string `toml:"version,omitempty"`
}

// hostInfo builds HostInfo from platform detection. Detection failure is not
// fatal: the snapshot still records an empty host section.
func hostInfo(ctx context.Context, detector platform.Detector) HostInfo {
	if detector == nil {
		return HostInfo{}
	}
	info, err := detector.Detect(ctx)
	if err != nil || info == nil {
		return HostInfo{}
	}
	return HostInfo{
		Hostname: info.Hostname,
		OS:       info.OS,
		Arch:     info.Arch,
		Platform: info.Platform,
		Family:   info.Family,
		Version:  info.Version,
	}
}

// currentUser returns the snapshot creator, falling back through $USER.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

func writeMetadata(path string, meta *Metadata) error {
	data, err := toml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func readMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := toml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &meta, nil
}
