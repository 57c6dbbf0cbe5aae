// Package feature models the boolean module flags that control what the
// generated configuration contains, and resolves them into an internally
// consistent set.
package feature

// FlagID identifies one toggleable module. The set of known flags is closed;
// adding a module means adding a constant here and wiring it into the default
// graph and the generator's fragment table.
type FlagID string

// Prompt module flags (rendered into the starship document).
const (
	FlagDirectory   FlagID = "directory"
	FlagGitBranch   FlagID = "git_branch"
	FlagGitStatus   FlagID = "git_status"
	FlagCmdDuration FlagID = "cmd_duration"
	FlagTime        FlagID = "time"
	FlagBattery     FlagID = "battery"
	FlagPython      FlagID = "python"
	FlagNodejs      FlagID = "nodejs"
	FlagGolang      FlagID = "golang"
	FlagRust        FlagID = "rust"

	// FlagRightFormat gates the right-hand prompt format string. It is a
	// container: it has no content of its own and is forced off when all of
	// its child content flags are off.
	FlagRightFormat FlagID = "right_format"
)

// Plugin flags (rendered into the shell document as zinit loader stanzas).
const (
	FlagAutosuggestions        FlagID = "autosuggestions"
	FlagSyntaxHighlighting     FlagID = "syntax_highlighting"
	FlagCompletions            FlagID = "completions"
	FlagHistorySubstringSearch FlagID = "history_substring_search"
)

// DependencyEdge states that Child may only be enabled while Parent is.
type DependencyEdge struct {
	Child  FlagID
	Parent FlagID
}

// ContainerRule states that Container is forced off when every listed child
// is off.
type ContainerRule struct {
	Container FlagID
	Children  []FlagID
}

// KnownFlags lists every flag the resolver and generator understand, in
// render order.
func KnownFlags() []FlagID {
	return []FlagID{
		FlagDirectory,
		FlagGitBranch,
		FlagGitStatus,
		FlagCmdDuration,
		FlagTime,
		FlagBattery,
		FlagPython,
		FlagNodejs,
		FlagGolang,
		FlagRust,
		FlagRightFormat,
		FlagAutosuggestions,
		FlagSyntaxHighlighting,
		FlagCompletions,
		FlagHistorySubstringSearch,
	}
}

// DefaultEdges returns the static dependency table for the known flag graph.
func DefaultEdges() []DependencyEdge {
	return []DependencyEdge{
		{Child: FlagGitStatus, Parent: FlagGitBranch},
		{Child: FlagCmdDuration, Parent: FlagRightFormat},
		{Child: FlagTime, Parent: FlagRightFormat},
		{Child: FlagBattery, Parent: FlagRightFormat},
	}
}

// DefaultContainers returns the container rules for the known flag graph.
func DefaultContainers() []ContainerRule {
	return []ContainerRule{
		{
			Container: FlagRightFormat,
			Children:  []FlagID{FlagCmdDuration, FlagTime, FlagBattery},
		},
	}
}

// DefaultFlags returns the initial flag map before user selection: everything
// enabled except battery, which only makes sense on laptops.
func DefaultFlags() map[FlagID]bool {
	flags := make(map[FlagID]bool, len(KnownFlags()))
	for _, id := range KnownFlags() {
		flags[id] = true
	}
	flags[FlagBattery] = false
	return flags
}
