package windowing

import "github.com/petasbytes/aicontext/memory"

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of entries [Start, End) in the original slice.
// Kind indicates whether it is a singleton or a user→assistant exchange.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into entries
	End   int // exclusive index into entries
}

// GroupBlocks groups entries into atomic units that keep exchanges whole.
// Invariants:
// - A pair is exactly two adjacent entries: user then assistant.
// - Every other entry (system, custom roles, unanswered prompts, extra
// assistant replies) is a singleton.
// - Groups are contiguous, non-overlapping and cover all entries in order.
func GroupBlocks(entries []memory.Entry) []Group {
	groups := make([]Group, 0, len(entries))
	for i := 0; i < len(entries); {
		if entries[i].Role == memory.RoleUser && i+1 < len(entries) && entries[i+1].Role == memory.RoleAssistant {
			groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
			i += 2
			continue
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}
