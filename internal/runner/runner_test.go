package runner_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/aicontext/internal/provider"
	"github.com/petasbytes/aicontext/internal/runner"
	"github.com/petasbytes/aicontext/internal/telemetry"
	"github.com/petasbytes/aicontext/memory"
)

const anthropicReply = `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-7-sonnet-latest","content":[{"type":"text","text":"Paris"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`

type capture struct {
	method string
	url    string
	body   []byte
}

type fakeTransport struct {
	respStatus int
	respBody   []byte
	captured   *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newClientWithTransport(rt http.RoundTripper) *anthropic.Client {
	return provider.NewAnthropicClient(
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
}

type anthropicBody struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func decodeAnthropic(t *testing.T, c *capture) anthropicBody {
	t.Helper()
	if c.body == nil {
		t.Fatal("no request captured")
	}
	var rb anthropicBody
	if err := json.Unmarshal(c.body, &rb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(c.body))
	}
	return rb
}

// seed returns a store holding an answered exchange and a pending prompt.
func seed(t *testing.T, opts ...memory.Option) *memory.Store {
	t.Helper()
	s, err := memory.New(opts...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	s.Add(memory.RoleUser, "old", "")
	s.Add(memory.RoleAssistant, "older reply", "")
	s.Add(memory.RoleUser, "q?", "")
	return s
}

func TestAnthropic_SendsSystemPromptAndHistory(t *testing.T) {
	capReq := &capture{}
	r := &runner.Anthropic{
		Client: newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}),
		Store:  seed(t, memory.WithSystemPrompt("Be brief.")),
	}

	msg, err := r.Ask(context.Background(), "q?", runner.Options{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if msg == nil || len(msg.Content) != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}

	rb := decodeAnthropic(t, capReq)
	if rb.Model != string(provider.DefaultAnthropicModel) || rb.MaxTokens != runner.DefaultMaxTokens {
		t.Fatalf("unexpected defaults: model=%q max_tokens=%d", rb.Model, rb.MaxTokens)
	}
	if len(rb.System) != 1 || rb.System[0].Text != "Be brief." {
		t.Fatalf("unexpected system: %+v", rb.System)
	}
	want := []struct{ role, text string }{{"user", "old"}, {"assistant", "older reply"}, {"user", "q?"}}
	if len(rb.Messages) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(rb.Messages))
	}
	for i, w := range want {
		m := rb.Messages[i]
		if m.Role != w.role || len(m.Content) != 1 || m.Content[0].Text != w.text {
			t.Fatalf("message %d: want %s %q, got %+v", i, w.role, w.text, m)
		}
	}
}

func TestAnthropic_OptionsOverrideModelAndMaxTokens(t *testing.T) {
	capReq := &capture{}
	r := &runner.Anthropic{
		Client:    newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}),
		Model:     "claude-default",
		MaxTokens: 64,
		Store:     seed(t),
	}
	if _, err := r.Ask(context.Background(), "q?", runner.Options{Model: "claude-other", MaxTokens: 32}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rb := decodeAnthropic(t, capReq)
	if rb.Model != "claude-other" || rb.MaxTokens != 32 {
		t.Fatalf("overrides not applied: model=%q max_tokens=%d", rb.Model, rb.MaxTokens)
	}
}

func TestAnthropic_WindowDropsOlderExchange(t *testing.T) {
	// "q?" costs 6 with the heuristic counter; the older exchange costs 22.
	capReq := &capture{}
	r := &runner.Anthropic{
		Client: newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}),
		Store:  seed(t),
		Window: runner.Window{Budget: 10},
	}
	if _, err := r.Ask(context.Background(), "q?", runner.Options{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rb := decodeAnthropic(t, capReq)
	if len(rb.Messages) != 1 || rb.Messages[0].Content[0].Text != "q?" {
		t.Fatalf("expected only the newest prompt, got %+v", rb.Messages)
	}
}

func TestAnthropic_OverBudgetNewest_ReturnsError_NoHTTP(t *testing.T) {
	capReq := &capture{}
	r := &runner.Anthropic{
		Client: newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}),
		Store:  seed(t),
		Window: runner.Window{Budget: 1},
	}
	_, err := r.Ask(context.Background(), "q?", runner.Options{})
	if !errors.Is(err, runner.ErrOverBudget) {
		t.Fatalf("expected ErrOverBudget, got %v", err)
	}
	if capReq.body != nil {
		t.Fatalf("expected no HTTP call when over budget; got body len=%d", len(capReq.body))
	}
}

func TestAnthropic_AppendsUnrecordedPrompt(t *testing.T) {
	capReq := &capture{}
	r := &runner.Anthropic{
		Client: newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}),
		Store:  seed(t),
	}
	if _, err := r.Ask(context.Background(), "follow-up", runner.Options{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rb := decodeAnthropic(t, capReq)
	last := rb.Messages[len(rb.Messages)-1]
	if len(rb.Messages) != 4 || last.Role != "user" || last.Content[0].Text != "follow-up" {
		t.Fatalf("expected prompt appended last, got %+v", rb.Messages)
	}
}

func TestAnthropic_MapsRoles(t *testing.T) {
	s, _ := memory.New()
	s.Add(memory.RoleAssistant, "orphan reply", "")
	s.Add(memory.RoleSystem, "note", "")
	s.Add(memory.Role("tool"), "result", "")
	s.Add(memory.RoleUser, "hi", "")

	capReq := &capture{}
	r := &runner.Anthropic{
		Client: newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}),
		Store:  s,
	}
	if _, err := r.Ask(context.Background(), "hi", runner.Options{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rb := decodeAnthropic(t, capReq)
	if len(rb.Messages) != 3 {
		t.Fatalf("expected leading assistant dropped, got %+v", rb.Messages)
	}
	for _, m := range rb.Messages {
		if m.Role != "user" {
			t.Fatalf("expected user role, got %+v", m)
		}
	}
}

func TestAnthropic_HTTPErrorPropagates(t *testing.T) {
	r := &runner.Anthropic{
		Client: newClientWithTransport(&fakeTransport{respStatus: 400, respBody: []byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)}),
		Store:  seed(t),
	}
	if _, err := r.Ask(context.Background(), "q?", runner.Options{}); err == nil {
		t.Fatal("expected error from 400 response")
	}
}

func TestAnthropic_WrapRecordsReply(t *testing.T) {
	s := seed(t)
	s.Clear("")
	r := &runner.Anthropic{
		Client: newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: &capture{}}),
		Store:  s,
	}
	ask := memory.Wrap(memory.NewRecorder(s, "claude"), provider.AnthropicPayload, r.Ask)

	if _, err := ask(context.Background(), "Capital of France?", runner.Options{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := s.Entries()
	if len(got) != 2 || got[0].Content != "Capital of France?" || got[1] != (memory.Entry{Role: memory.RoleAssistant, Content: "Paris"}) {
		t.Fatalf("unexpected history: %+v", got)
	}
}

func TestAnthropic_EmitsWindowPrepared(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AICTX_OBSERVE_JSON", "1")
	t.Setenv("AICTX_ARTIFACTS_DIR", dir)

	r := &runner.Anthropic{
		Client: newClientWithTransport(&fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: &capture{}}),
		Store:  seed(t),
		Window: runner.Window{Budget: 10},
	}
	ctx := telemetry.WithTurnID(context.Background(), "turn-7")
	if _, err := r.Ask(ctx, "q?", runner.Options{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	events := readEvents(t, dir)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev["event"] != "window_prepared" || ev["turn_id"] != "turn-7" || ev["provider"] != "anthropic" {
		t.Fatalf("unexpected event: %v", ev)
	}
	if ev["budget"] != float64(10) || ev["included_entries"] != float64(1) || ev["skipped_groups"] != float64(1) {
		t.Fatalf("unexpected window stats: %v", ev)
	}
}

func readEvents(t *testing.T, dir string) []map[string]any {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}
