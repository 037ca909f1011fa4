package windowing

import "github.com/petasbytes/aicontext/memory"

// Stats describes a prepared window. Total is the estimated cost of the
// included entries only.
type Stats struct {
	Budget           int
	Total            int
	IncludedGroups   int
	SkippedGroups    int
	IncludedEntries  int
	OverBudgetNewest bool // the newest group alone exceeds Budget
}

// PrepareSendWindow returns the newest suffix of entries whose groups fit
// within budget according to c. Groups are taken whole, newest first, and
// scanning stops at the first group that does not fit, so the window is
// always contiguous and ends at the newest entry.
//
// When nothing fits (including any budget ≤ 0) the window is empty and
// OverBudgetNewest is set, unless entries is empty.
func PrepareSendWindow(entries []memory.Entry, budget int, c TokenCounter) ([]memory.Entry, Stats) {
	st := Stats{Budget: budget}
	if len(entries) == 0 {
		return nil, st
	}

	groups := GroupBlocks(entries)
	start := len(entries)
	if budget > 0 {
		for i := len(groups) - 1; i >= 0; i-- {
			cost := c.CountGroup(groups[i], entries)
			if st.Total+cost > budget {
				break
			}
			st.Total += cost
			st.IncludedGroups++
			start = groups[i].Start
		}
	}
	st.SkippedGroups = len(groups) - st.IncludedGroups

	if st.IncludedGroups == 0 {
		st.OverBudgetNewest = true
		return nil, st
	}
	st.IncludedEntries = len(entries) - start
	return entries[start:], st
}

// Full returns every entry with the stats PrepareSendWindow would report
// for an unlimited budget. Budget is left at 0.
func Full(entries []memory.Entry, c TokenCounter) ([]memory.Entry, Stats) {
	groups := GroupBlocks(entries)
	st := Stats{IncludedGroups: len(groups), IncludedEntries: len(entries)}
	for _, g := range groups {
		st.Total += c.CountGroup(g, entries)
	}
	return entries, st
}
