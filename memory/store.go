package memory

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is an ordered, optionally bounded conversation history with an
// optional system prompt.
//
// A Store is not safe for concurrent use; callers that share one must
// serialise access themselves.
type Store struct {
	systemPrompt string
	maxMessages  int
	bounded      bool
	messages     []Message

	log zerolog.Logger
	now func() time.Time
}

// Option configures a Store at construction.
type Option func(*config)

type config struct {
	systemPrompt string
	maxMessages  int
	bounded      bool
	records      []Record
	messages     []Message
	hasMessages  bool
	document     []byte
	log          zerolog.Logger
	now          func() time.Time
}

// WithSystemPrompt sets the system prompt shown first in formatted transcripts.
func WithSystemPrompt(p string) Option {
	return func(c *config) { c.systemPrompt = p }
}

// WithMaxMessages bounds the store to the newest n messages.
func WithMaxMessages(n int) Option {
	return func(c *config) {
		c.maxMessages = n
		c.bounded = true
	}
}

// WithRecords preloads the store from records.
func WithRecords(recs []Record) Option {
	return func(c *config) {
		c.records = recs
		c.hasMessages = true
	}
}

// WithMessages preloads the store with already-built messages.
func WithMessages(msgs []Message) Option {
	return func(c *config) {
		c.messages = msgs
		c.hasMessages = true
	}
}

// WithJSON preloads the store from a document produced by Export. A
// system_prompt in the document overrides WithSystemPrompt.
func WithJSON(doc string) Option {
	return func(c *config) { c.document = []byte(doc) }
}

// WithLogger sets the logger used for debug events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithClock replaces time.Now as the source of message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New returns a Store configured by opts.
func New(opts ...Option) (*Store, error) {
	c := config{log: zerolog.Nop(), now: time.Now}
	for _, o := range opts {
		o(&c)
	}
	if c.bounded && c.maxMessages < 0 {
		return nil, errors.Wrapf(ErrInvalidBound, "got %d", c.maxMessages)
	}
	s := &Store{
		systemPrompt: c.systemPrompt,
		maxMessages:  c.maxMessages,
		bounded:      c.bounded,
		log:          c.log,
		now:          c.now,
	}
	switch {
	case len(c.document) > 0:
		if err := s.LoadJSON(string(c.document)); err != nil {
			return nil, err
		}
	case len(c.records) > 0:
		if err := s.LoadRecords(c.records); err != nil {
			return nil, err
		}
	case c.hasMessages:
		s.LoadMessages(c.messages)
	}
	return s, nil
}

// SystemPrompt returns the system prompt, or "" when unset.
func (s *Store) SystemPrompt() string { return s.systemPrompt }

// SetSystemPrompt replaces the system prompt; "" unsets it. An empty
// prompt and no prompt are the same state.
func (s *Store) SetSystemPrompt(p string) { s.systemPrompt = p }

// MaxMessages returns the retention bound and whether one is set.
func (s *Store) MaxMessages() (int, bool) { return s.maxMessages, s.bounded }

// Len returns the number of stored messages.
func (s *Store) Len() int { return len(s.messages) }

// Messages returns a copy of the stored messages, oldest first.
func (s *Store) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Add appends a message stamped with the current time, then drops the
// oldest messages beyond the retention bound. An empty speaker means
// DefaultSpeaker.
func (s *Store) Add(role Role, content, speaker string) {
	s.messages = append(s.messages, NewMessage(role, content, speaker, s.clock()()))
	s.enforceBound("add")
}

func (s *Store) clock() func() time.Time {
	if s.now == nil {
		return time.Now
	}
	return s.now
}

func (s *Store) enforceBound(op string) {
	if !s.bounded || len(s.messages) <= s.maxMessages {
		return
	}
	dropped := len(s.messages) - s.maxMessages
	kept := make([]Message, s.maxMessages)
	copy(kept, s.messages[dropped:])
	s.messages = kept
	s.log.Debug().Str("op", op).Int("dropped", dropped).Int("max_messages", s.maxMessages).Msg("memory: retention bound applied")
}

// Filter selects messages for Store.Filter and Store.Format. Zero values
// disable the corresponding predicate; so do negative Limit and Offset.
type Filter struct {
	Speaker string
	Role    Role
	Offset  int
	Limit   int
}

func (s *Store) selectMessages(f Filter) []Message {
	out := make([]Message, 0, len(s.messages))
	for _, m := range s.messages {
		if f.Speaker != "" && m.speaker != f.Speaker {
			continue
		}
		if f.Role != "" && m.role != f.Role {
			continue
		}
		out = append(out, m)
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out
}

// Filter applies, in order, the speaker and role predicates, the offset and
// the limit, and returns the surviving entries oldest first.
func (s *Store) Filter(f Filter) []Entry {
	sel := s.selectMessages(f)
	out := make([]Entry, 0, len(sel))
	for _, m := range sel {
		out = append(out, m.Entry())
	}
	return out
}

// Entries returns every message as an Entry, oldest first.
func (s *Store) Entries() []Entry {
	return s.Filter(Filter{})
}

// Format renders a transcript: the system prompt first (if set), then every
// entry selected by f, separated by blank lines.
//
// Each line is labelled with f.Speaker, not the message's own speaker, so
// an unfiltered transcript shows every message as unlabelled. Transcripts
// written by earlier versions depend on this.
func (s *Store) Format(f Filter) string {
	var blocks []string
	if s.systemPrompt != "" {
		blocks = append(blocks, RoleSystem.Display()+": "+s.systemPrompt)
	}
	for _, e := range s.Filter(f) {
		m := Message{role: e.Role, content: e.Content, speaker: f.Speaker}
		if m.speaker == "" {
			m.speaker = DefaultSpeaker
		}
		blocks = append(blocks, m.Display())
	}
	return strings.Join(blocks, "\n\n")
}

// Latest returns the content of the newest message from speaker, or from
// anyone when speaker is "". ok is false when nothing matches.
func (s *Store) Latest(speaker string) (content string, ok bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if speaker == "" || m.speaker == speaker {
			return m.content, true
		}
	}
	return "", false
}

// LoadRecords replaces every message with ones built from recs. On error
// the store is unchanged.
func (s *Store) LoadRecords(recs []Record) error {
	msgs, err := messagesFromRecords(recs, s.clock())
	if err != nil {
		return err
	}
	s.replace(msgs)
	return nil
}

// LoadMessages replaces every message with msgs.
func (s *Store) LoadMessages(msgs []Message) {
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	s.replace(cp)
}

// LoadJSON replaces every message with those of an exported document. When
// the document carries a system_prompt key, it replaces the system prompt
// too (null unsets it). On error the store is unchanged.
func (s *Store) LoadJSON(doc string) error {
	d, err := decodeDocument([]byte(doc))
	if err != nil {
		return err
	}
	msgs, err := messagesFromRecords(d.records, s.clock())
	if err != nil {
		return err
	}
	if d.promptSet {
		s.systemPrompt = d.prompt
	}
	s.replace(msgs)
	return nil
}

func (s *Store) replace(msgs []Message) {
	s.messages = msgs
	s.log.Debug().Int("messages", len(msgs)).Msg("memory: messages loaded")
	s.enforceBound("load")
}

// Clear removes the messages of speaker, keeping the others in order. An
// empty speaker removes everything.
func (s *Store) Clear(speaker string) {
	before := len(s.messages)
	if speaker == "" {
		s.messages = nil
	} else {
		kept := s.messages[:0:0]
		for _, m := range s.messages {
			if m.speaker != speaker {
				kept = append(kept, m)
			}
		}
		s.messages = kept
	}
	s.log.Debug().Str("speaker", speaker).Int("removed", before-len(s.messages)).Msg("memory: cleared")
}

// Document returns the exportable form of the store. An unset (empty)
// system prompt is written as null, so a loaded "" exports as null.
func (s *Store) Document() Document {
	d := Document{Messages: make([]Record, 0, len(s.messages))}
	if s.systemPrompt != "" {
		p := s.systemPrompt
		d.SystemPrompt = &p
	}
	for _, m := range s.messages {
		d.Messages = append(d.Messages, m.Record())
	}
	return d
}

// Export returns the store as a JSON document accepted by LoadJSON.
func (s *Store) Export() (string, error) {
	b, err := json.Marshal(s.Document())
	if err != nil {
		return "", errors.Wrap(err, "memory: export")
	}
	return string(b), nil
}

// MarshalJSON implements json.Marshaler using the export format.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Document())
}

// UnmarshalJSON implements json.Unmarshaler; it behaves like LoadJSON.
func (s *Store) UnmarshalJSON(b []byte) error {
	return s.LoadJSON(string(b))
}
