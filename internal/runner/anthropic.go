package runner

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/petasbytes/aicontext/internal/provider"
	"github.com/petasbytes/aicontext/memory"
)

// DefaultMaxTokens caps replies when neither the runner nor Options set a limit.
const DefaultMaxTokens = 1024

// Anthropic asks Claude models through the Messages API.
type Anthropic struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int
	Store     *memory.Store
	Window    Window
	Log       zerolog.Logger
}

// Ask sends the store's windowed history ending in prompt and returns the raw message.
func (a *Anthropic) Ask(ctx context.Context, prompt string, opts Options) (*anthropic.Message, error) {
	model := a.Model
	if opts.Model != "" {
		model = anthropic.Model(opts.Model)
	}
	if model == "" {
		model = provider.DefaultAnthropicModel
	}

	ctx, req, err := prepare(ctx, a.Log, "anthropic", string(model), a.Store, a.Window, prompt)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: int64(maxTokens(opts.MaxTokens, a.MaxTokens)),
		Messages:  anthropicMessages(req.entries),
	}
	if req.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.system}}
	}

	msg, err := a.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: messages.new")
	}
	return msg, nil
}

// anthropicMessages maps entries to message params. The API has no system
// or custom roles inside messages, so anything that is not an assistant
// entry is sent as user. Leading assistant entries are dropped so the
// conversation opens with a user turn.
func anthropicMessages(entries []memory.Entry) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(entries))
	for _, e := range entries {
		if e.Role == memory.RoleAssistant {
			if len(out) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(e.Content)))
			continue
		}
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(e.Content)))
	}
	return out
}

func maxTokens(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return DefaultMaxTokens
}
