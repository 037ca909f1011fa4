package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/petasbytes/aicontext/memory"
)

// NewAnthropicClient returns a client using API key from the env unless
// opts say otherwise.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

// AnthropicPayload reads the text blocks of m, in order. Non-text blocks
// (tool_use, thinking) are skipped.
func AnthropicPayload(m *anthropic.Message) (memory.ResponsePayload, error) {
	if m == nil {
		return memory.ResponsePayload{}, errors.WithMessage(memory.ErrExtraction, "nil anthropic message")
	}
	texts := make([]string, 0, len(m.Content))
	for _, b := range m.Content {
		if tb, ok := b.AsAny().(anthropic.TextBlock); ok {
			texts = append(texts, tb.Text)
		}
	}
	return memory.ContentBlocks(texts...), nil
}
