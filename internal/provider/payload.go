package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/petasbytes/aicontext/memory"
)

// ContentTexter is implemented by responses laid out as content blocks.
type ContentTexter interface {
	ContentTexts() []string
}

// ChoiceContenter is implemented by responses laid out as choices.
type ChoiceContenter interface {
	ChoiceContents() []string
}

// PayloadOf extracts reply text from a response of unknown type. Content
// blocks are tried first, then choices. A value offering both layouts falls
// back to choices only when it has no content blocks.
func PayloadOf(v any) (memory.ResponsePayload, error) {
	switch r := v.(type) {
	case memory.ResponsePayload:
		return r, nil
	case *anthropic.Message:
		return AnthropicPayload(r)
	case anthropic.Message:
		return AnthropicPayload(&r)
	case *openai.ChatCompletionResponse:
		return OpenAIPayloadRef(r)
	case openai.ChatCompletionResponse:
		return OpenAIPayload(r)
	}

	ct, hasContent := v.(ContentTexter)
	if hasContent {
		if texts := ct.ContentTexts(); len(texts) > 0 {
			return memory.ContentBlocks(texts...), nil
		}
	}
	if cc, ok := v.(ChoiceContenter); ok {
		return memory.Choices(cc.ChoiceContents()...), nil
	}
	if hasContent {
		return memory.ContentBlocks(), nil
	}
	return memory.ResponsePayload{}, errors.WithMessagef(memory.ErrExtraction, "type %T", v)
}

// Extract is PayloadOf as a typed memory.Extractor.
func Extract[R any](resp R) (memory.ResponsePayload, error) {
	return PayloadOf(resp)
}
