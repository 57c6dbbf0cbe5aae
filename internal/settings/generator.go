package settings

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Generator renders Settings back into commented, human-editable Lua. It is
// used to write the default settings file on first run.
type Generator struct {
	indent string
}

// NewGenerator creates a settings generator.
func NewGenerator() *Generator {
	return &Generator{indent: "  "}
}

// Generate renders Lua source for the given settings. now is the generation
// time recorded in the header comment; pass it in so output stays
// deterministic under test.
func (g *Generator) Generate(settings *Settings, now time.Time) (string, error) {
	if err := settings.Validate(); err != nil {
		return "", err
	}

	var buf bytes.Buffer

	buf.WriteString("-- zshift settings\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(now.UTC().Format(time.RFC3339))
	buf.WriteString("\n")
	buf.WriteString("-- Edit this file and re-run `zshift migrate` to apply changes.\n\n")

	buf.WriteString(luaGlobalZshift + " = {\n")

	if settings.Meta.Name != "" || settings.Meta.Description != "" {
		g.writeMeta(&buf, settings.Meta)
	}
	if len(settings.Track) > 0 {
		g.writeTrack(&buf, settings.Track)
	}
	if len(settings.Modules) > 0 {
		g.writeModules(&buf, settings.Modules)
	}
	if settings.Options.BackupRetentionDays > 0 {
		g.writeOptions(&buf, settings.Options)
	}

	buf.WriteString("}\n")

	return buf.String(), nil
}

func (g *Generator) writeMeta(buf *bytes.Buffer, meta Meta) {
	buf.WriteString(g.indent + luaFieldMeta + " = {\n")
	if meta.Name != "" {
		fmt.Fprintf(buf, "%s%s%s = %s,\n", g.indent, g.indent, luaFieldName, quoteLuaString(meta.Name))
	}
	if meta.Description != "" {
		fmt.Fprintf(buf, "%s%s%s = %s,\n", g.indent, g.indent, luaFieldDesc, quoteLuaString(meta.Description))
	}
	buf.WriteString(g.indent + "},\n\n")
}

func (g *Generator) writeTrack(buf *bytes.Buffer, items []TrackedItem) {
	buf.WriteString(g.indent + luaFieldTrack + " = {\n")
	for _, item := range items {
		if !item.Recursive {
			fmt.Fprintf(buf, "%s%s%s,\n", g.indent, g.indent, quoteLuaString(item.Path))
			continue
		}
		fmt.Fprintf(buf, "%s%s{ %s = %s, %s = true },\n",
			g.indent, g.indent, luaFieldPath, quoteLuaString(item.Path), luaFieldRecursive)
	}
	buf.WriteString(g.indent + "},\n\n")
}

// writeModules renders module overrides sorted by name so regeneration is
// stable.
func (g *Generator) writeModules(buf *bytes.Buffer, modules map[string]bool) {
	buf.WriteString(g.indent + luaFieldModules + " = {\n")
	for _, name := range sortedKeys(modules) {
		fmt.Fprintf(buf, "%s%s%s = %t,\n", g.indent, g.indent, name, modules[name])
	}
	buf.WriteString(g.indent + "},\n\n")
}

func (g *Generator) writeOptions(buf *bytes.Buffer, options Options) {
	buf.WriteString(g.indent + luaFieldOptions + " = {\n")
	fmt.Fprintf(buf, "%s%s%s = %d,\n", g.indent, g.indent, luaFieldRetention, options.BackupRetentionDays)
	buf.WriteString(g.indent + "},\n")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// quoteLuaString quotes a string for Lua, escaping special characters.
func quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}

// Default returns the settings zshift starts from when no file exists yet.
func Default() *Settings {
	return &Settings{
		Meta: Meta{
			Name:        "zshift settings",
			Description: "Backup tracking and module selection for shell migration",
		},
		Track: []TrackedItem{
			{Path: "~/.zshrc"},
			{Path: "~/.config/starship.toml"},
		},
		Options: Options{
			BackupRetentionDays: DefaultRetentionDays,
		},
	}
}
