package runner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/petasbytes/aicontext/internal/provider"
	"github.com/petasbytes/aicontext/memory"
)

// OpenAI asks chat models through the chat completions API.
type OpenAI struct {
	Client    *openai.Client
	Model     string
	MaxTokens int
	Store     *memory.Store
	Window    Window
	Log       zerolog.Logger
}

// Ask sends the system prompt and the store's windowed history ending in
// prompt, and returns the raw completion.
func (o *OpenAI) Ask(ctx context.Context, prompt string, opts Options) (openai.ChatCompletionResponse, error) {
	model := o.Model
	if opts.Model != "" {
		model = opts.Model
	}
	if model == "" {
		model = provider.DefaultOpenAIModel
	}

	ctx, req, err := prepare(ctx, o.Log, "openai", model, o.Store, o.Window, prompt)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxTokens(opts.MaxTokens, o.MaxTokens),
		Messages:  openAIMessages(req.system, req.entries),
	})
	if err != nil {
		return resp, errors.Wrap(err, "openai: create chat completion")
	}
	return resp, nil
}

// openAIMessages puts the system prompt first and passes entry roles through.
func openAIMessages(system string, entries []memory.Entry) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(entries)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, e := range entries {
		out = append(out, openai.ChatCompletionMessage{Role: string(e.Role), Content: e.Content})
	}
	return out
}
