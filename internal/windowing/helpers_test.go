package windowing_test

import (
	"github.com/petasbytes/aicontext/internal/windowing"
	"github.com/petasbytes/aicontext/memory"
)

// User entry constructor
func U(text string) memory.Entry { return memory.Entry{Role: memory.RoleUser, Content: text} }

// Assistant entry constructor
func A(text string) memory.Entry { return memory.Entry{Role: memory.RoleAssistant, Content: text} }

// System entry constructor
func S(text string) memory.Entry { return memory.Entry{Role: memory.RoleSystem, Content: text} }

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].End != want[i].End {
			return false
		}
	}
	return true
}
