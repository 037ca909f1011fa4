package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/aicontext/memory"
)

// TokenCounter estimates input-token cost for entries or groups.
type TokenCounter interface {
	CountEntry(e memory.Entry) int
	CountGroup(g Group, all []memory.Entry) int
}

// HeuristicCounter is the current default deterministic estimator.
// Rules:
// - content: rune count
// - a small per-entry overhead accounts for role and framing.
type HeuristicCounter struct{}

// Fixed per-entry overhead for deterministic counts; changing this requires updating the guard test.
const entryOverhead = 4

func (HeuristicCounter) CountEntry(e memory.Entry) int {
	return utf8.RuneCountInString(e.Content) + entryOverhead
}

func (h HeuristicCounter) CountGroup(g Group, all []memory.Entry) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountEntry(all[i])
	}
	return total
}
