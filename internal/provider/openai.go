package provider

import (
	"net/http"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/petasbytes/aicontext/memory"
)

const DefaultOpenAIModel = openai.GPT4o

// NewOpenAIClient returns a chat client. Empty baseURL keeps the public
// endpoint; nil hc keeps the library's HTTP client.
func NewOpenAIClient(apiKey, baseURL string, hc *http.Client) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIPayload reads the message content of every choice, in order.
func OpenAIPayload(r openai.ChatCompletionResponse) (memory.ResponsePayload, error) {
	contents := make([]string, 0, len(r.Choices))
	for _, c := range r.Choices {
		contents = append(contents, c.Message.Content)
	}
	return memory.Choices(contents...), nil
}

// OpenAIPayloadRef is OpenAIPayload for pointer responses.
func OpenAIPayloadRef(r *openai.ChatCompletionResponse) (memory.ResponsePayload, error) {
	if r == nil {
		return memory.ResponsePayload{}, errors.WithMessage(memory.ErrExtraction, "nil openai response")
	}
	return OpenAIPayload(*r)
}
