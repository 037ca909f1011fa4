package memory

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Role is the coarse origin of a message. Any string is accepted; the
// constants below are the ones with a dedicated display name.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultSpeaker marks a message that no named agent claimed.
const DefaultSpeaker = "default"

var roleDisplay = map[Role]string{
	RoleSystem:    "System",
	RoleUser:      "Human",
	RoleAssistant: "Assistant",
}

// Display returns the transcript name of the role. Unknown roles are
// returned with their first letter upper-cased.
func (r Role) Display() string {
	if d, ok := roleDisplay[r]; ok {
		return d
	}
	first, size := utf8.DecodeRuneInString(string(r))
	if first == utf8.RuneError {
		return string(r)
	}
	return string(unicode.ToUpper(first)) + string(r)[size:]
}

// Message is one immutable turn of a conversation.
type Message struct {
	role      Role
	content   string
	speaker   string
	createdAt time.Time
}

// NewMessage builds a Message. An empty speaker becomes DefaultSpeaker and a
// zero createdAt becomes the current time.
func NewMessage(role Role, content, speaker string, createdAt time.Time) Message {
	if speaker == "" {
		speaker = DefaultSpeaker
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Message{role: role, content: content, speaker: speaker, createdAt: createdAt}
}

func (m Message) Role() Role           { return m.role }
func (m Message) Content() string      { return m.content }
func (m Message) Speaker() string      { return m.speaker }
func (m Message) CreatedAt() time.Time { return m.createdAt }

// Display renders the message as a transcript line.
func (m Message) Display() string {
	var b strings.Builder
	b.WriteString(m.role.Display())
	if m.speaker != DefaultSpeaker {
		b.WriteString(" (")
		b.WriteString(m.speaker)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(m.content)
	return b.String()
}

// Entry drops everything but role and content.
func (m Message) Entry() Entry {
	return Entry{Role: m.role, Content: m.content}
}

// Record returns the serialisable form of m.
func (m Message) Record() Record {
	return Record{
		Role:         m.role,
		Content:      m.content,
		SpeakerLabel: m.speaker,
		CreatedAt:    m.createdAt.Format(time.RFC3339Nano),
	}
}

// Entry is the role/content pair handed to model APIs.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
