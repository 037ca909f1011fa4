package runner_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/aicontext/internal/provider"
	"github.com/petasbytes/aicontext/internal/runner"
	"github.com/petasbytes/aicontext/memory"
)

const openAIReply = `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"Paris"},"finish_reason":"stop"}]}`

type openAIBody struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOpenAIRunner(t *testing.T, c *capture, store *memory.Store) *runner.OpenAI {
	t.Helper()
	hc := &http.Client{Transport: &fakeTransport{respStatus: 200, respBody: []byte(openAIReply), captured: c}}
	return &runner.OpenAI{
		Client: provider.NewOpenAIClient("test-key", "http://openai.test/v1", hc),
		Store:  store,
	}
}

func TestOpenAI_SendsSystemFirstAndRolesThrough(t *testing.T) {
	c := &capture{}
	s := seed(t, memory.WithSystemPrompt("Be brief."))
	r := newOpenAIRunner(t, c, s)

	resp, err := r.Ask(context.Background(), "q?", runner.Options{})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)

	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "http://openai.test/v1/chat/completions", c.url)

	var body openAIBody
	require.NoError(t, json.Unmarshal(c.body, &body))
	assert.Equal(t, provider.DefaultOpenAIModel, body.Model)
	assert.Equal(t, runner.DefaultMaxTokens, body.MaxTokens)

	roles := make([]string, 0, len(body.Messages))
	for _, m := range body.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
	assert.Equal(t, "Be brief.", body.Messages[0].Content)
	assert.Equal(t, "q?", body.Messages[3].Content)
}

func TestOpenAI_WindowAndOverBudget(t *testing.T) {
	c := &capture{}
	r := newOpenAIRunner(t, c, seed(t))
	r.Window = runner.Window{Budget: 10}

	_, err := r.Ask(context.Background(), "q?", runner.Options{})
	require.NoError(t, err)
	var body openAIBody
	require.NoError(t, json.Unmarshal(c.body, &body))
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "q?", body.Messages[0].Content)

	c.body = nil
	r.Window.Budget = 1
	_, err = r.Ask(context.Background(), "q?", runner.Options{})
	assert.True(t, errors.Is(err, runner.ErrOverBudget))
	assert.Nil(t, c.body, "no request once over budget")
}

func TestOpenAI_WrapRecordsReply(t *testing.T) {
	s, err := memory.New()
	require.NoError(t, err)
	r := newOpenAIRunner(t, &capture{}, s)
	ask := memory.Wrap(memory.NewRecorder(s, "gpt"), provider.OpenAIPayload, r.Ask)

	_, err = ask(context.Background(), "Capital of France?", runner.Options{Model: "gpt-4o-mini"})
	require.NoError(t, err)

	got, ok := s.Latest("gpt")
	require.True(t, ok)
	assert.Equal(t, "Paris", got)
	assert.Equal(t, 2, s.Len())
}
