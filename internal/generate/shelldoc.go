package generate

import (
	"bytes"
	"fmt"
	"time"

	"github.com/kettleby/zshift/internal/feature"
	"github.com/kettleby/zshift/internal/shellparse"
)

// pluginRepos maps plugin flags to the zinit repositories they load. Order
// here is render order.
var pluginRepos = []struct {
	flag feature.FlagID
	repo string
	dir  string
}{
	{feature.FlagAutosuggestions, "zsh-users/zsh-autosuggestions", "zsh-autosuggestions"},
	{feature.FlagSyntaxHighlighting, "zsh-users/zsh-syntax-highlighting", "zsh-syntax-highlighting"},
	{feature.FlagCompletions, "zsh-users/zsh-completions", "zsh-completions"},
	{feature.FlagHistorySubstringSearch, "zsh-users/zsh-history-substring-search", "zsh-history-substring-search"},
}

// toolAliases maps tool binaries to the alias lines rendered when the binary
// is present.
var toolAliases = []struct {
	tool  string
	lines []string
}{
	{"eza", []string{
		`alias ls='eza'`,
		`alias ll='eza -la --git'`,
		`alias tree='eza --tree'`,
	}},
	{"bat", []string{`alias cat='bat --paging=never'`}},
	{"rg", []string{`alias grep='rg'`}},
	{"fd", []string{`alias find='fd'`}},
}

// builtinFunctions are the productivity helpers the base template supplies.
// Their names form the reserved set: user definitions with these names are
// dropped by the parser in favor of these bodies.
var builtinFunctions = []struct {
	name string
	body string
}{
	{"mkcd", "mkcd() {\n  mkdir -p \"$1\" && cd \"$1\"\n}"},
	{"extract", "extract() {\n  case \"$1\" in\n    *.tar.gz|*.tgz) tar xzf \"$1\" ;;\n    *.tar.bz2) tar xjf \"$1\" ;;\n    *.zip) unzip \"$1\" ;;\n    *.gz) gunzip \"$1\" ;;\n    *) echo \"extract: unknown archive type: $1\" >&2; return 1 ;;\n  esac\n}"},
	{"up", "up() {\n  local n=${1:-1}\n  while [ \"$n\" -gt 0 ]; do\n    cd ..\n    n=$((n - 1))\n  done\n}"},
}

// ReservedNames returns the function and alias names owned by the generated
// base template.
func ReservedNames() shellparse.ReservedNameSet {
	names := make([]string, 0, len(builtinFunctions))
	for _, fn := range builtinFunctions {
		names = append(names, fn.name)
	}
	return shellparse.NewReservedNameSet(names...)
}

// section is one ordered piece of the shell document.
type section struct {
	name  string
	lines []string
}

// buildShellDoc assembles the shell document sections in their fixed order.
// The order is not configurable: history/options, PATH, plugin loaders, tool
// aliases, built-ins, user section, prompt initialization last.
func (g *Generator) buildShellDoc(flags map[feature.FlagID]bool, parsed *shellparse.Result, now time.Time) string {
	var sections []section

	sections = append(sections, section{
		name: "header",
		lines: []string{
			"# Generated by zshift on " + now.UTC().Format(time.RFC3339),
			"# Edit ~/.config/zshift/zshift.lua and re-run `zshift migrate` instead of editing this file.",
		},
	})

	sections = append(sections, section{
		name: "history",
		lines: []string{
			"HISTFILE=~/.zsh_history",
			"HISTSIZE=50000",
			"SAVEHIST=50000",
			"setopt SHARE_HISTORY",
			"setopt HIST_IGNORE_DUPS",
			"setopt HIST_REDUCE_BLANKS",
			"setopt AUTO_CD",
		},
	})

	sections = append(sections, section{
		name:  "path",
		lines: []string{`export PATH="$HOME/.local/bin:$PATH"`},
	})

	if lines := g.pluginLines(flags); len(lines) > 0 {
		sections = append(sections, section{name: "plugins", lines: lines})
	}

	if lines := g.toolAliasLines(); len(lines) > 0 {
		sections = append(sections, section{name: "tool aliases", lines: lines})
	}

	builtins := []string{
		`alias reload='source ~/.zshrc'`,
		`alias path='echo $PATH | tr ":" "\n"'`,
	}
	for _, fn := range builtinFunctions {
		builtins = append(builtins, "", fn.body)
	}
	sections = append(sections, section{name: "builtins", lines: builtins})

	if userLines := userSection(parsed); len(userLines) > 0 {
		sections = append(sections, section{name: "user", lines: userLines})
	}

	// The prompt hook must always be the final line of the document.
	sections = append(sections, section{
		name:  "prompt",
		lines: []string{`eval "$(starship init zsh)"`},
	})

	var buf bytes.Buffer
	for i, sec := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		for _, line := range sec.lines {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// pluginLines renders a zinit loader stanza per enabled plugin flag. Each
// stanza is emitted only when the plugin directory exists at render time.
func (g *Generator) pluginLines(flags map[feature.FlagID]bool) []string {
	var lines []string
	for _, plugin := range pluginRepos {
		if !flags[plugin.flag] {
			continue
		}
		if !g.dirExists(g.pluginDir(plugin.dir)) {
			g.logger.Warn("plugin directory missing, stanza skipped",
				"plugin", string(plugin.flag), "dir", g.pluginDir(plugin.dir))
			continue
		}
		lines = append(lines, fmt.Sprintf("zinit light %s", plugin.repo))
	}
	if len(lines) > 0 {
		lines = append([]string{`source "$HOME/.local/share/zinit/zinit.zsh"`}, lines...)
	}
	return lines
}

// toolAliasLines renders aliases for each tool whose binary is present.
func (g *Generator) toolAliasLines() []string {
	var lines []string
	for _, t := range toolAliases {
		if !g.tools.Present(t.tool) {
			continue
		}
		lines = append(lines, t.lines...)
	}
	return lines
}

// userSection renders preserved user content: aliases, then exports, then
// surviving function bodies, blank-line delimited from each other.
func userSection(parsed *shellparse.Result) []string {
	if parsed == nil {
		return nil
	}

	var lines []string
	lines = append(lines, "# User configuration preserved from previous setup")

	for _, alias := range parsed.Aliases {
		lines = append(lines, alias.RawLine)
	}
	if len(parsed.Aliases) > 0 && (len(parsed.Exports) > 0 || len(parsed.Functions) > 0) {
		lines = append(lines, "")
	}
	for _, export := range parsed.Exports {
		lines = append(lines, export.RawLine)
	}
	if len(parsed.Exports) > 0 && len(parsed.Functions) > 0 {
		lines = append(lines, "")
	}
	for i, fn := range parsed.Functions {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, fn.Body)
	}

	if len(lines) == 1 {
		return nil
	}
	return lines
}
