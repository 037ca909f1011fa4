// Package windowing_test contains tests for the heuristic token counter.
// Tests focus on rune counting correctness and deterministic overhead application.
package windowing_test

import (
	"testing"

	"github.com/petasbytes/aicontext/internal/windowing"
	"github.com/petasbytes/aicontext/memory"
)

func TestHeuristicCounter_CountsRunes(t *testing.T) {
	h := windowing.HeuristicCounter{}
	// Derive per-entry overhead from an empty entry (0 runes => result equals overhead)
	overhead := h.CountEntry(U(""))
	if overhead != 4 {
		t.Fatalf("overhead changed: got=%d want=4", overhead)
	}
	// "héllo 世界" = 8 runes, more bytes
	got := h.CountEntry(A("héllo 世界"))
	if want := 8 + overhead; got != want {
		t.Fatalf("got=%d want=%d", got, want)
	}
}

func TestHeuristicCounter_CountGroup_SumsEntries(t *testing.T) {
	h := windowing.HeuristicCounter{}
	groups := []windowing.Group{{Kind: windowing.GroupPair, Start: 0, End: 2}, {Kind: windowing.GroupSingleton, Start: 2, End: 3}}
	all := []memory.Entry{U("a"), A("bc"), U("xyz")}

	total := 0
	for _, g := range groups {
		total += h.CountGroup(g, all)
	}
	if want := (1 + 4) + (2 + 4) + (3 + 4); total != want {
		t.Fatalf("got=%d want=%d", total, want)
	}
}

func TestHeuristicCounter_CountGroup_ClampsToSlice(t *testing.T) {
	h := windowing.HeuristicCounter{}
	got := h.CountGroup(windowing.Group{Start: 0, End: 5}, []memory.Entry{U("ab")})
	if got != 6 {
		t.Fatalf("got=%d want=6", got)
	}
}
