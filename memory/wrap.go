package memory

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// PayloadShape names a provider response layout that carries reply text.
type PayloadShape int

const (
	shapeNone PayloadShape = iota
	// ShapeContentBlocks is a list of content blocks whose first element has a text field.
	ShapeContentBlocks
	// ShapeChoices is a list of choices whose first element has a message.content field.
	ShapeChoices
)

func (s PayloadShape) String() string {
	switch s {
	case ShapeContentBlocks:
		return "content_blocks"
	case ShapeChoices:
		return "choices"
	default:
		return "none"
	}
}

// ResponsePayload is the reply text of a model response, tagged with the
// shape it was read from. Build one with ContentBlocks or Choices; the zero
// value carries no text.
type ResponsePayload struct {
	shape PayloadShape
	texts []string
}

// ContentBlocks wraps the text fields of a content-block response, in order.
func ContentBlocks(texts ...string) ResponsePayload {
	return ResponsePayload{shape: ShapeContentBlocks, texts: texts}
}

// Choices wraps the message contents of a choices response, in order.
func Choices(contents ...string) ResponsePayload {
	return ResponsePayload{shape: ShapeChoices, texts: contents}
}

// Shape reports which constructor built p.
func (p ResponsePayload) Shape() PayloadShape { return p.shape }

// Text returns the first element's text.
func (p ResponsePayload) Text() (string, error) {
	if p.shape == shapeNone {
		return "", errors.WithMessage(ErrExtraction, "empty payload")
	}
	if len(p.texts) == 0 {
		return "", errors.WithMessagef(ErrExtraction, "%s: no elements", p.shape)
	}
	return p.texts[0], nil
}

// Call is a model invocation: a prompt plus call-specific arguments.
type Call[A, R any] func(ctx context.Context, prompt string, args A) (R, error)

// Extractor reads the reply text out of a response.
type Extractor[R any] func(R) (ResponsePayload, error)

// Recorder appends wrapped calls to a Store under one speaker label.
type Recorder struct {
	Store   *Store
	Speaker string
	Log     zerolog.Logger
}

// NewRecorder returns a Recorder for store. An empty speaker means DefaultSpeaker.
func NewRecorder(store *Store, speaker string) *Recorder {
	if speaker == "" {
		speaker = DefaultSpeaker
	}
	return &Recorder{Store: store, Speaker: speaker, Log: store.log}
}

// Wrap returns a Call with the signature of call that records its
// exchange in r.Store.
//
// The prompt is added as a user message before call runs. If call fails
// its error is returned and nothing else is recorded. Otherwise the reply
// text is extracted and added as an assistant message; if extraction fails
// the response is returned together with an error matching ErrExtraction,
// and no assistant message is recorded. The response is never modified.
func Wrap[A, R any](r *Recorder, extract Extractor[R], call Call[A, R]) Call[A, R] {
	return func(ctx context.Context, prompt string, args A) (R, error) {
		r.Store.Add(RoleUser, prompt, r.Speaker)

		resp, err := call(ctx, prompt, args)
		if err != nil {
			return resp, err
		}

		text, err := extractText(extract, resp)
		if err != nil {
			r.Log.Warn().Err(err).Str("speaker", r.Speaker).Msg("memory: reply not recorded")
			return resp, err
		}
		r.Store.Add(RoleAssistant, text, r.Speaker)
		return resp, nil
	}
}

func extractText[R any](extract Extractor[R], resp R) (string, error) {
	p, err := extract(resp)
	if err != nil {
		if errors.Is(err, ErrExtraction) {
			return "", err
		}
		return "", errors.WithMessagef(ErrExtraction, "extract: %v", err)
	}
	return p.Text()
}
