package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kettleby/zshift/internal/backup"
	"github.com/kettleby/zshift/internal/platform"
	"github.com/kettleby/zshift/internal/settings"
)

// stderrLogger prints log lines to stderr. Debug lines only appear with
// --verbose.
type stderrLogger struct {
	verbose bool
}

func (l *stderrLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.verbose {
		l.log("debug", msg, keysAndValues)
	}
}

func (l *stderrLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log("info", msg, keysAndValues)
}

func (l *stderrLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log("warning", msg, keysAndValues)
}

func (l *stderrLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log("error", msg, keysAndValues)
}

func (l *stderrLogger) log(level, msg string, keysAndValues []interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s", level, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(os.Stderr, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	fmt.Fprintln(os.Stderr)
}

// environment bundles the pieces every subcommand wires up: the parsed
// settings file, the snapshot manager over the tracked paths, and a logger.
type environment struct {
	settings *settings.Settings
	backups  *backup.Manager
	logger   settings.Logger
}

func loadEnvironment(ctx context.Context, verbose bool) (*environment, error) {
	logger := &stderrLogger{verbose: verbose}

	settingsDir, err := settings.DefaultDir()
	if err != nil {
		return nil, err
	}
	parser := settings.NewParser(platform.NewDetector())
	cfg, err := settings.LoadOrInit(ctx, parser, settings.FilePath(settingsDir))
	if err != nil {
		// Lua errors carry a stack traceback; trim it unless --verbose is set.
		return nil, fmt.Errorf("load settings: %s", settings.FormatError(err, verbose))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tracked := make([]string, 0, len(cfg.Track))
	for _, item := range cfg.Track {
		expanded, err := settings.ExpandPath(item.Path)
		if err != nil {
			return nil, fmt.Errorf("expand tracked path %q: %w", item.Path, err)
		}
		tracked = append(tracked, expanded)
	}

	backupDir, err := backup.DefaultBaseDir()
	if err != nil {
		return nil, err
	}

	return &environment{
		settings: cfg,
		backups: backup.NewManager(backupDir, tracked,
			backup.WithLogger(logger),
			backup.WithVersion(Version)),
		logger: logger,
	}, nil
}

// promptConfigPath returns the starship configuration destination,
// ~/.config/starship.toml.
func promptConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "starship.toml"), nil
}
