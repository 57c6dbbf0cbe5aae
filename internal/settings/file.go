package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultDir returns zshift's configuration directory (~/.config/zshift).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "zshift"), nil
}

// FilePath returns the settings file path inside dir.
func FilePath(dir string) string {
	return filepath.Join(dir, "zshift.lua")
}

// Load reads and parses the settings file at path.
func Load(ctx context.Context, parser *Parser, path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	return parser.ParseString(ctx, string(data))
}

// LoadOrInit loads settings from path, writing and returning the defaults
// when no file exists yet.
func LoadOrInit(ctx context.Context, parser *Parser, path string) (*Settings, error) {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat settings file: %w", err)
		}

		defaults := Default()
		content, genErr := NewGenerator().Generate(defaults, time.Now())
		if genErr != nil {
			return nil, fmt.Errorf("generate default settings: %w", genErr)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create settings directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("write default settings: %w", err)
		}
		return defaults, nil
	}

	return Load(ctx, parser, path)
}
