package memory

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Document is the export format of a Store.
type Document struct {
	SystemPrompt *string  `json:"system_prompt"`
	Messages     []Record `json:"messages"`
}

const documentSchema = `{
  "type": "object",
  "properties": {
    "system_prompt": {"type": ["string", "null"]},
    "messages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["role", "content"],
        "properties": {
          "role": {"type": "string"},
          "content": {"type": "string"},
          "speaker_label": {"type": "string"},
          "created_at": {"type": "string"},
          "assistant_name": {"type": "string"},
          "timestamp": {"type": "string"}
        }
      }
    }
  }
}`

var docSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		panic(err)
	}
	return s
}()

// decoded is a parsed document. promptSet reports whether the
// system_prompt key was present at all.
type decoded struct {
	prompt    string
	promptSet bool
	records   []Record
}

func decodeDocument(data []byte) (decoded, error) {
	if !json.Valid(data) {
		return decoded{}, &ParseError{Op: "load", Err: errors.New("document is not valid JSON")}
	}
	res, err := docSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return decoded{}, parseErr("load", err, "validate document")
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return decoded{}, &ParseError{Op: "load", Err: errors.Errorf("schema: %s", strings.Join(msgs, "; "))}
	}

	var raw struct {
		SystemPrompt json.RawMessage `json:"system_prompt"`
		Messages     []Record        `json:"messages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return decoded{}, parseErr("load", err, "decode document")
	}
	out := decoded{records: raw.Messages}
	if len(raw.SystemPrompt) > 0 {
		out.promptSet = true
		if !bytes.Equal(raw.SystemPrompt, []byte("null")) {
			if err := json.Unmarshal(raw.SystemPrompt, &out.prompt); err != nil {
				return decoded{}, parseErr("load", err, "decode system_prompt")
			}
		}
	}
	return out, nil
}
