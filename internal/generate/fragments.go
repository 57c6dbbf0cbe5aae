package generate

import (
	"bytes"
	"fmt"

	"github.com/kettleby/zshift/internal/feature"
)

// defaultFragments is the ordered fragment list for the starship document.
// Each fragment renders only when its flag survives resolution.
func defaultFragments(flags map[feature.FlagID]bool) []Fragment {
	rightFormat := `"$cmd_duration$time$battery"`
	if !flags[feature.FlagRightFormat] {
		rightFormat = ""
	}

	fragments := []Fragment{
		{
			// Top-level keys; always rendered.
			Flag:  "",
			Table: "",
			Entries: []Entry{
				{Key: "add_newline", Value: "true"},
			},
		},
	}
	if rightFormat != "" {
		fragments[0].Entries = append(fragments[0].Entries, Entry{Key: "right_format", Value: rightFormat})
	}

	fragments = append(fragments,
		Fragment{
			Flag:  feature.FlagDirectory,
			Table: "directory",
			Entries: []Entry{
				{Key: "truncation_length", Value: "3"},
				{Key: "truncate_to_repo", Value: "true"},
			},
		},
		Fragment{
			Flag:  feature.FlagGitBranch,
			Table: "git_branch",
			Entries: []Entry{
				{Key: "symbol", Value: `"git "`},
				{Key: "style", Value: `"bold purple"`},
			},
		},
		Fragment{
			Flag:  feature.FlagGitStatus,
			Table: "git_status",
			Entries: []Entry{
				{Key: "style", Value: `"bold red"`},
				{Key: "stashed", Value: `"*${count}"`},
			},
		},
		Fragment{
			Flag:  feature.FlagCmdDuration,
			Table: "cmd_duration",
			Entries: []Entry{
				{Key: "min_time", Value: "2000"},
				{Key: "format", Value: `"took [$duration]($style) "`},
			},
		},
		Fragment{
			Flag:  feature.FlagTime,
			Table: "time",
			Entries: []Entry{
				{Key: "disabled", Value: "false"},
				{Key: "format", Value: `"[$time]($style) "`},
			},
		},
		Fragment{
			Flag:  feature.FlagBattery,
			Table: "battery",
			Entries: []Entry{
				{Key: "full_symbol", Value: `"+ "`},
				{Key: "charging_symbol", Value: `"^ "`},
				{Key: "discharging_symbol", Value: `"- "`},
			},
		},
		Fragment{
			Flag:  feature.FlagPython,
			Table: "python",
			Entries: []Entry{
				{Key: "symbol", Value: `"py "`},
			},
		},
		Fragment{
			Flag:  feature.FlagNodejs,
			Table: "nodejs",
			Entries: []Entry{
				{Key: "symbol", Value: `"node "`},
			},
		},
		Fragment{
			Flag:  feature.FlagGolang,
			Table: "golang",
			Entries: []Entry{
				{Key: "symbol", Value: `"go "`},
			},
		},
		Fragment{
			Flag:  feature.FlagRust,
			Table: "rust",
			Entries: []Entry{
				{Key: "symbol", Value: `"rs "`},
			},
		},
	)

	return fragments
}

// renderFragments renders enabled fragments in order, suppressing any key a
// table has already emitted. A duplicate is a template defect, never a fatal
// error; it is logged and the first occurrence wins. Empty values are
// rejected: a fragment must not emit a key without a value.
func (g *Generator) renderFragments(flags map[feature.FlagID]bool, fragments []Fragment, now string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("# Generated by zshift on " + now + "\n")
	buf.WriteString("# Edit ~/.config/zshift/zshift.lua and re-run `zshift migrate` instead of editing this file.\n")

	// Merge enabled fragments by table first: two fragments may contribute to
	// the same table, and a table header must be emitted exactly once.
	var tableOrder []string
	merged := make(map[string][]Entry)
	seen := make(map[string]struct{})

	for _, frag := range fragments {
		if frag.Flag != "" && !flags[frag.Flag] {
			continue
		}
		for _, entry := range frag.Entries {
			if entry.Value == "" {
				return "", fmt.Errorf("fragment %q emits empty value for key %q", frag.Table, entry.Key)
			}
			dedupeKey := frag.Table + "\x00" + entry.Key
			if _, dup := seen[dedupeKey]; dup {
				g.logger.Warn("duplicate key suppressed in generated config",
					"table", frag.Table, "key", entry.Key)
				continue
			}
			seen[dedupeKey] = struct{}{}
			if _, known := merged[frag.Table]; !known {
				tableOrder = append(tableOrder, frag.Table)
			}
			merged[frag.Table] = append(merged[frag.Table], entry)
		}
	}

	// Top-level keys must precede any table header, or TOML would assign
	// them to the preceding table.
	if entries, ok := merged[""]; ok && len(entries) > 0 {
		buf.WriteString("\n")
		for _, entry := range entries {
			buf.WriteString(entry.Key + " = " + entry.Value + "\n")
		}
	}
	for _, table := range tableOrder {
		entries := merged[table]
		if table == "" || len(entries) == 0 {
			continue
		}
		buf.WriteString("\n[" + table + "]\n")
		for _, entry := range entries {
			buf.WriteString(entry.Key + " = " + entry.Value + "\n")
		}
	}

	return buf.String(), nil
}
