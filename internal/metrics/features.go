// Package metrics derives size features from message text.
package metrics

import (
	"strings"
	"unicode/utf8"

	"github.com/petasbytes/aicontext/memory"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// Add returns the field-wise sum of f and g.
func (f Features) Add(g Features) Features {
	return Features{Bytes: f.Bytes + g.Bytes, Runes: f.Runes + g.Runes, Words: f.Words + g.Words, Lines: f.Lines + g.Lines}
}

// CountFeatures computes and returns byte, rune, word, and line counts for the input string.
func CountFeatures(s string) Features {
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)), // split on Unicode whitespace
		Lines: countLines(s),
	}
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}

// Summary aggregates the features of a history.
type Summary struct {
	Messages int
	ByRole   map[memory.Role]Features
	Total    Features
}

// Summarize totals the features of entries, overall and per role.
func Summarize(entries []memory.Entry) Summary {
	s := Summary{Messages: len(entries), ByRole: make(map[memory.Role]Features)}
	for _, e := range entries {
		f := CountFeatures(e.Content)
		s.ByRole[e.Role] = s.ByRole[e.Role].Add(f)
		s.Total = s.Total.Add(f)
	}
	return s
}
