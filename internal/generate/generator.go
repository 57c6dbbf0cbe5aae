package generate

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/kettleby/zshift/internal/feature"
	"github.com/kettleby/zshift/internal/settings"
	"github.com/kettleby/zshift/internal/shell"
	"github.com/kettleby/zshift/internal/shellparse"
)

// Generator renders both migration output documents from resolved flags and
// parsed user content.
type Generator struct {
	tools     shell.ToolChecker
	logger    settings.Logger
	zinitDir  string
	dirExists func(string) bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for duplicate-key and skipped-plugin warnings.
func WithLogger(logger settings.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithZinitDir overrides the zinit plugins directory checked before a loader
// stanza is rendered.
func WithZinitDir(dir string) Option {
	return func(g *Generator) { g.zinitDir = dir }
}

// withDirExists overrides directory probing; tests use it.
func withDirExists(fn func(string) bool) Option {
	return func(g *Generator) { g.dirExists = fn }
}

// NewGenerator creates a generator. tools decides which tool aliases are
// rendered.
func NewGenerator(tools shell.ToolChecker, opts ...Option) *Generator {
	g := &Generator{
		tools:  tools,
		logger: settings.NopLogger(),
		dirExists: func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && info.IsDir()
		},
	}
	if g.zinitDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			g.zinitDir = filepath.Join(home, ".local", "share", "zinit", "plugins")
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) pluginDir(name string) string {
	return filepath.Join(g.zinitDir, name)
}

// Generate renders the shell rc document and the starship document for the
// given resolved flags and parsed entries. now supplies the single timestamp
// comment; all other output is a pure function of the inputs.
//
// The starship document is checked against the generator's own invariants
// (no duplicate keys, no empty values) and a TOML round-trip before being
// marked validated. The shell document's validation needs the target shell
// and happens at commit time.
func (g *Generator) Generate(
	flags map[feature.FlagID]bool,
	parsed *shellparse.Result,
	shellPath, promptPath string,
	now time.Time,
) (shellDoc, promptDoc *Document, err error) {
	shellDoc = &Document{
		Path:    shellPath,
		Content: g.buildShellDoc(flags, parsed, now),
	}

	promptContent, err := g.renderFragments(flags, defaultFragments(flags), now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, nil, &ValidationError{Path: promptPath, Reason: "fragment invariant violated", Cause: err}
	}

	// go-toml rejects duplicate keys and malformed tables, so a clean
	// round-trip proves the dedupe pass did its job.
	var check map[string]interface{}
	if err := toml.Unmarshal([]byte(promptContent), &check); err != nil {
		return nil, nil, &ValidationError{Path: promptPath, Reason: "generated TOML does not parse", Cause: err}
	}

	promptDoc = &Document{
		Path:      promptPath,
		Content:   promptContent,
		Validated: true,
	}
	return shellDoc, promptDoc, nil
}
