package feature

// Resolve propagates constraints over the flag graph until it reaches a fixed
// point and returns the consistent result. The input map is not modified.
//
// Two rules are applied in alternation:
//
//  1. a child whose parent is disabled is forced off
//  2. a container whose children are all off is forced off
//
// The known graph is at most two levels deep, so one pass would suffice, but
// container-disabling can cascade into further parent edges, so the loop runs
// until a full pass changes nothing. Resolution is total: unknown flags in
// edges or rules are ignored, and there are no error conditions.
func Resolve(flags map[FlagID]bool, edges []DependencyEdge, containers []ContainerRule) map[FlagID]bool {
	resolved := make(map[FlagID]bool, len(flags))
	for id, enabled := range flags {
		resolved[id] = enabled
	}

	for {
		changed := false

		for _, edge := range edges {
			parentEnabled, parentKnown := resolved[edge.Parent]
			if !parentKnown {
				continue
			}
			if !parentEnabled && resolved[edge.Child] {
				resolved[edge.Child] = false
				changed = true
			}
		}

		for _, rule := range containers {
			if !resolved[rule.Container] {
				continue
			}
			anyChildOn := false
			for _, child := range rule.Children {
				if resolved[child] {
					anyChildOn = true
					break
				}
			}
			if !anyChildOn && len(rule.Children) > 0 {
				resolved[rule.Container] = false
				changed = true
			}
		}

		if !changed {
			return resolved
		}
	}
}
