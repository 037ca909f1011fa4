package memory

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LoadConversation returns a Store holding the transcript at path. A
// missing file yields an empty Store configured by opts.
func LoadConversation(path string, opts ...Option) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(opts...)
		}
		return nil, errors.Wrap(err, "memory: read transcript")
	}
	return New(append(opts, WithJSON(string(b)))...)
}

// SaveConversation writes the export document of s to path, creating
// missing parent directories.
func SaveConversation(path string, s *Store) error {
	b, err := json.MarshalIndent(s.Document(), "", " ")
	if err != nil {
		return errors.Wrap(err, "memory: encode transcript")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "memory: create transcript dir")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "memory: write transcript")
	}
	return nil
}
