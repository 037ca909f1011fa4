package memory

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Record is the flat serialised form of a Message.
type Record struct {
	Role         Role   `json:"role"`
	Content      string `json:"content"`
	SpeakerLabel string `json:"speaker_label"`
	CreatedAt    string `json:"created_at"`
}

// UnmarshalJSON also accepts the legacy assistant_name and timestamp keys.
// The current keys win when both are present.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var aux struct {
		plain
		AssistantName string `json:"assistant_name"`
		Timestamp     string `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Record(aux.plain)
	if r.SpeakerLabel == "" {
		r.SpeakerLabel = aux.AssistantName
	}
	if r.CreatedAt == "" {
		r.CreatedAt = aux.Timestamp
	}
	return nil
}

// Accepted created_at layouts. The second one covers naive ISO-8601
// timestamps, read in local time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// MessageFromRecord builds a Message from r. A missing speaker label becomes
// DefaultSpeaker and a missing timestamp becomes the current time; a
// timestamp that is present but unreadable is a *ParseError.
func MessageFromRecord(r Record) (Message, error) {
	return messageFromRecord(r, time.Now)
}

func messageFromRecord(r Record, now func() time.Time) (Message, error) {
	var at time.Time
	if r.CreatedAt == "" {
		at = now()
	} else {
		t, err := parseTime(r.CreatedAt)
		if err != nil {
			return Message{}, parseErr("record", err, "created_at "+r.CreatedAt)
		}
		at = t
	}
	return NewMessage(r.Role, r.Content, r.SpeakerLabel, at), nil
}

func messagesFromRecords(recs []Record, now func() time.Time) ([]Message, error) {
	msgs := make([]Message, 0, len(recs))
	for i, r := range recs {
		m, err := messageFromRecord(r, now)
		if err != nil {
			return nil, errors.WithMessagef(err, "message %d", i)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
