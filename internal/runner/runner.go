package runner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/petasbytes/aicontext/internal/telemetry"
	"github.com/petasbytes/aicontext/internal/windowing"
	"github.com/petasbytes/aicontext/memory"
)

// ErrOverBudget is returned when the newest exchange alone exceeds the token budget.
var ErrOverBudget = errors.New("runner: newest exchange exceeds token budget")

// Options are per-call overrides. Zero values keep the runner's settings.
type Options struct {
	Model     string
	MaxTokens int
}

// Window configures how much history is sent. Budget ≤ 0 sends everything.
type Window struct {
	Budget  int
	Counter windowing.TokenCounter
}

// request is the provider-neutral input of one call.
type request struct {
	system  string
	entries []memory.Entry
}

// prepare selects the entries to send for prompt and emits window_prepared.
func prepare(ctx context.Context, log zerolog.Logger, provider, model string, store *memory.Store, w Window, prompt string) (context.Context, request, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)

	var entries []memory.Entry
	system := ""
	if store != nil {
		entries = store.Entries()
		system = store.SystemPrompt()
	}
	if n := len(entries); n == 0 || entries[n-1].Role != memory.RoleUser || entries[n-1].Content != prompt {
		entries = append(entries, memory.Entry{Role: memory.RoleUser, Content: prompt})
	}

	counter := w.Counter
	if counter == nil {
		counter = windowing.HeuristicCounter{}
	}
	var (
		window []memory.Entry
		stats  windowing.Stats
	)
	if w.Budget > 0 {
		window, stats = windowing.PrepareSendWindow(entries, w.Budget, counter)
	} else {
		window, stats = windowing.Full(entries, counter)
	}

	telemetry.Emit("window_prepared", map[string]any{
		"turn_id":            turnID,
		"provider":           provider,
		"model":              model,
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"included_groups":    stats.IncludedGroups,
		"skipped_groups":     stats.SkippedGroups,
		"included_entries":   stats.IncludedEntries,
		"over_budget_newest": stats.OverBudgetNewest,
	})
	log.Debug().
		Str("turn_id", turnID).
		Str("provider", provider).
		Int("budget", stats.Budget).
		Int("entries", stats.IncludedEntries).
		Int("skipped_groups", stats.SkippedGroups).
		Msg("runner: window prepared")

	if stats.OverBudgetNewest {
		return ctx, request{}, errors.Wrapf(ErrOverBudget, "budget %d", w.Budget)
	}
	return ctx, request{system: system, entries: window}, nil
}
