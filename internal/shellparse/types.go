// Package shellparse extracts user-defined aliases, exports, and function
// definitions from free-form shell rc file text.
//
// The parser recognizes a deliberately narrow grammar: it is not a shell
// interpreter. Alias and export lines are matched by leading keyword, and
// function bodies are captured with an explicit brace-depth state machine
// that survives nested blocks.
package shellparse

import "fmt"

// AliasEntry is one user-defined alias, kept as the raw source line.
type AliasEntry struct {
	// Name is the alias name (text between "alias " and "=").
	Name string
	// RawLine is the original line, verbatim.
	RawLine string
}

// ExportEntry is one user-defined environment export, kept as the raw source line.
type ExportEntry struct {
	// Name is the variable name (text between "export " and "=").
	Name string
	// RawLine is the original line, verbatim.
	RawLine string
}

// FunctionDefinition is a complete user-defined shell function, including
// any nested blocks inside the body.
type FunctionDefinition struct {
	// Name is the function name with the "function" keyword or "()" suffix stripped.
	Name string
	// Body is the full text of the definition, start line through closing brace.
	Body string
	// StartLine is the 1-based line number of the definition's first line.
	StartLine int
	// EndLine is the 1-based line number of the definition's last line.
	EndLine int
}

// ReservedNameSet holds function and alias names supplied by the generated
// base template. User definitions sharing a reserved name are excluded from
// parse results so the template's version is the one that survives.
type ReservedNameSet map[string]struct{}

// NewReservedNameSet builds a ReservedNameSet from a list of names.
func NewReservedNameSet(names ...string) ReservedNameSet {
	set := make(ReservedNameSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is reserved.
func (s ReservedNameSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Result holds everything extracted from one rc file.
type Result struct {
	Aliases   []AliasEntry
	Exports   []ExportEntry
	Functions []FunctionDefinition

	// Warnings records recoverable problems (e.g. an unterminated function
	// body). A non-empty Warnings still comes with a usable Result.
	Warnings []ParseWarning
}

// ParseWarning describes a recoverable parsing problem. The parser never
// fails hard on malformed input; it emits what it buffered and moves on.
type ParseWarning struct {
	Line    int
	Message string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}
