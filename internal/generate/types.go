// Package generate renders the two migration output documents: the zsh rc
// file and the starship prompt configuration.
//
// Both documents are built from typed, ordered section lists and rendered
// last, so no user content is ever spliced into eval-able template strings.
// Documents are produced in memory, validated, and only then committed to
// disk with a temp-file-then-rename pattern; a failed validation leaves the
// live file untouched.
package generate

import (
	"fmt"

	"github.com/kettleby/zshift/internal/feature"
)

// Document is a generated output file, produced in memory and written only
// after validation succeeds.
type Document struct {
	// Path is the destination the document will be committed to.
	Path string
	// Content is the full rendered text.
	Content string
	// Validated is set once the document passed its validation oracle.
	Validated bool
}

// Entry is one key/value pair inside a fragment. Value holds rendered TOML
// value text (already quoted where needed).
type Entry struct {
	Key   string
	Value string
}

// Fragment is a self-contained chunk of the starship document gated by one
// feature flag. Table is the TOML table name; empty means top-level keys.
type Fragment struct {
	Flag    feature.FlagID
	Table   string
	Entries []Entry
}

// ValidationError reports a generated document that failed its validation
// oracle. The live file at Path was not modified.
type ValidationError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("validation failed for generated %s: %s (live file unchanged)", e.Path, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
