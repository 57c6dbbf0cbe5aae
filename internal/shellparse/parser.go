package shellparse

import (
	"strings"
)

// scanState tracks where the function scanner is in its forward pass.
type scanState int

const (
	scanIdle scanState = iota
	scanInFunction
)

// Parser extracts aliases, exports, and functions from shell source text.
type Parser struct {
	reserved ReservedNameSet
}

// NewParser creates a parser. Functions whose names appear in reserved are
// dropped from results; pass nil to keep everything.
func NewParser(reserved ReservedNameSet) *Parser {
	return &Parser{reserved: reserved}
}

// Parse scans rawText in a single forward pass and returns the extracted
// entries. It never returns an error for malformed input; problems are
// reported through Result.Warnings.
func (p *Parser) Parse(rawText string) (*Result, error) {
	result := &Result{}

	seenAliasNames := make(map[string]struct{})
	seenExportNames := make(map[string]struct{})
	seenFuncNames := make(map[string]struct{})

	state := scanIdle
	braceDepth := 0
	bodyOpened := false
	var funcBuf strings.Builder
	var funcName string
	funcStart := 0

	lines := strings.Split(rawText, "\n")
	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		if state == scanInFunction {
			funcBuf.WriteString("\n")
			funcBuf.WriteString(line)
			if strings.Contains(line, "{") {
				bodyOpened = true
			}
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			if bodyOpened && braceDepth <= 0 {
				p.emitFunction(result, seenFuncNames, funcName, funcBuf.String(), funcStart, lineNo)
				state = scanIdle
				funcBuf.Reset()
			}
			continue
		}

		// Comments never start an alias, export, or function.
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "alias "):
			name := entryName(trimmed, "alias ")
			if _, dup := seenAliasNames[name]; dup {
				continue
			}
			seenAliasNames[name] = struct{}{}
			result.Aliases = append(result.Aliases, AliasEntry{
				Name:    name,
				RawLine: trimmed,
			})

		case strings.HasPrefix(trimmed, "export "):
			name := entryName(trimmed, "export ")
			if _, dup := seenExportNames[name]; dup {
				continue
			}
			seenExportNames[name] = struct{}{}
			result.Exports = append(result.Exports, ExportEntry{
				Name:    name,
				RawLine: trimmed,
			})

		default:
			name, ok := functionStart(trimmed)
			if !ok {
				continue
			}
			opens := strings.Count(line, "{")
			closes := strings.Count(line, "}")
			if opens > 0 && opens == closes {
				// Single-line definition: the start line balances itself.
				p.emitFunction(result, seenFuncNames, name, line, lineNo, lineNo)
				continue
			}
			state = scanInFunction
			braceDepth = opens - closes
			bodyOpened = opens > 0
			funcName = name
			funcStart = lineNo
			funcBuf.Reset()
			funcBuf.WriteString(line)
		}
	}

	// Unterminated function at EOF: emit what was buffered and warn rather
	// than failing or looping.
	if state == scanInFunction {
		p.emitFunction(result, seenFuncNames, funcName, funcBuf.String(), funcStart, len(lines))
		result.Warnings = append(result.Warnings, ParseWarning{
			Line:    funcStart,
			Message: "function " + funcName + " has unbalanced braces at end of file",
		})
	}

	return result, nil
}

// emitFunction records a completed function body, applying first-definition-wins
// deduplication and reserved-name filtering.
func (p *Parser) emitFunction(result *Result, seen map[string]struct{}, name, body string, start, end int) {
	if name == "" {
		return
	}
	if _, dup := seen[name]; dup {
		return
	}
	seen[name] = struct{}{}
	if p.reserved.Contains(name) {
		return
	}
	result.Functions = append(result.Functions, FunctionDefinition{
		Name:      name,
		Body:      body,
		StartLine: start,
		EndLine:   end,
	})
}

// functionStart reports whether a trimmed line opens a function definition
// and returns the function name. Both declaration styles are recognized:
//
//	function name() { ...     (keyword style)
//	name() { ...              (POSIX style)
func functionStart(trimmed string) (string, bool) {
	if rest, ok := strings.CutPrefix(trimmed, "function "); ok {
		rest = strings.TrimSpace(rest)
		idx := strings.IndexAny(rest, "( \t{")
		if idx <= 0 {
			return "", false
		}
		return rest[:idx], true
	}

	// POSIX style requires "()" before any brace and a bare word before it.
	idx := strings.Index(trimmed, "()")
	if idx <= 0 {
		return "", false
	}
	name := strings.TrimSpace(trimmed[:idx])
	if name == "" || strings.ContainsAny(name, " \t=\"'$`;|&<>") {
		return "", false
	}
	// Only treat it as a definition when a body follows on this line or the
	// line is exactly the header (brace on a later line).
	rest := strings.TrimSpace(trimmed[idx+2:])
	if rest != "" && !strings.HasPrefix(rest, "{") {
		return "", false
	}
	return name, true
}

// entryName extracts the declared name from an alias or export line:
// everything between the keyword and the first "=". Lines without "=" yield
// the remainder of the line (e.g. `export PATH` style re-exports).
func entryName(trimmed, keyword string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, keyword))
	if eq := strings.Index(rest, "="); eq >= 0 {
		return rest[:eq]
	}
	return rest
}
