package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/kettleby/zshift/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser parses Lua settings files with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a settings parser. detector may be nil, in which case no
// platform table is injected.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseString parses settings from Lua source text.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Settings, error) {
	L := newSandboxedVM()
	defer L.Close()

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractSettings(L)
}

// ParseError represents a settings parsing error with a friendly message and
// the raw Lua detail.
type ParseError struct {
	Message string
	Detail  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// FormatError formats a ParseError for user display. Verbose mode shows the
// raw Lua error; otherwise the stack traceback is trimmed off.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}

// extractSettings pulls the global "zshift" table out of the VM.
func extractSettings(L *lua.LState) (*Settings, error) {
	root := L.GetGlobal(luaGlobalZshift)
	if root.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'zshift' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}

	settings := &Settings{}
	table := root.(*lua.LTable)

	if metaVal := table.RawGetString(luaFieldMeta); metaVal.Type() == lua.LTTable {
		settings.Meta = extractMeta(metaVal.(*lua.LTable))
	}

	if trackVal := table.RawGetString(luaFieldTrack); trackVal.Type() == lua.LTTable {
		settings.Track = extractTrackedItems(trackVal.(*lua.LTable))
	}

	if modulesVal := table.RawGetString(luaFieldModules); modulesVal.Type() == lua.LTTable {
		settings.Modules = extractModules(modulesVal.(*lua.LTable))
	}

	if optionsVal := table.RawGetString(luaFieldOptions); optionsVal.Type() == lua.LTTable {
		settings.Options = extractOptions(optionsVal.(*lua.LTable))
	}

	if err := settings.Validate(); err != nil {
		return nil, &ParseError{
			Message: "settings validation failed",
			Detail:  err.Error(),
		}
	}

	return settings, nil
}

func extractMeta(table *lua.LTable) Meta {
	meta := Meta{}
	if v := table.RawGetString(luaFieldName); v.Type() == lua.LTString {
		meta.Name = v.String()
	}
	if v := table.RawGetString(luaFieldDesc); v.Type() == lua.LTString {
		meta.Description = v.String()
	}
	return meta
}

// extractTrackedItems reads the track array. Nil entries (from
// platform.when conditionals) are skipped.
func extractTrackedItems(table *lua.LTable) []TrackedItem {
	var items []TrackedItem

	table.ForEach(func(key, value lua.LValue) {
		switch value.Type() {
		case lua.LTString:
			items = append(items, TrackedItem{Path: value.String()})
		case lua.LTTable:
			entry := value.(*lua.LTable)
			item := TrackedItem{}
			if v := entry.RawGetString(luaFieldPath); v.Type() == lua.LTString {
				item.Path = v.String()
			}
			if v := entry.RawGetString(luaFieldRecursive); v.Type() == lua.LTBool {
				item.Recursive = bool(v.(lua.LBool))
			}
			items = append(items, item)
		}
	})

	return items
}

func extractModules(table *lua.LTable) map[string]bool {
	modules := make(map[string]bool)
	table.ForEach(func(key, value lua.LValue) {
		if key.Type() == lua.LTString && value.Type() == lua.LTBool {
			modules[key.String()] = bool(value.(lua.LBool))
		}
	})
	return modules
}

func extractOptions(table *lua.LTable) Options {
	options := Options{}
	if v := table.RawGetString(luaFieldRetention); v.Type() == lua.LTNumber {
		options.BackupRetentionDays = int(lua.LVAsNumber(v))
	}
	return options
}
