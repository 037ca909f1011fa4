// Package fsops reads and writes transcript files confined to a data root.
package fsops

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/petasbytes/aicontext/internal/safety"
	"github.com/petasbytes/aicontext/memory"
)

// TranscriptExt is the extension List reports files by.
const TranscriptExt = ".json"

// Dir is a data root holding transcripts.
type Dir struct {
	root string
}

// Open resolves root (empty means the working directory).
func Open(root string) (*Dir, error) {
	abs, err := safety.InitRoot(root)
	if err != nil {
		return nil, err
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute data root.
func (d *Dir) Root() string { return d.root }

// Path validates rel for writing and returns its absolute form.
func (d *Dir) Path(rel string) (string, error) {
	return safety.ValidateWritePath(d.root, rel)
}

// List returns the transcripts and subdirectories of relDir, sorted, with
// directories suffixed by "/". Other files are omitted.
func (d *Dir) List(relDir string) ([]string, error) {
	if relDir == "" {
		relDir = "."
	}
	abs, err := safety.ValidateRelPath(d.root, relDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "fsops: list %s", relDir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			if _, err := safety.ValidateRelPath(d.root, filepath.Join(relDir, name)); err != nil {
				continue
			}
			names = append(names, name+"/")
		case strings.EqualFold(filepath.Ext(name), TranscriptExt):
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the transcript at rel into a new Store configured by opts. A
// missing file yields an empty Store.
func (d *Dir) Load(rel string, opts ...memory.Option) (*memory.Store, error) {
	abs, err := safety.ValidateRelPath(d.root, rel)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
		return nil, &safety.PathError{Code: "ERR_NOT_A_FILE", Path: rel, Message: "path is a directory"}
	}
	return memory.LoadConversation(abs, opts...)
}

// Save writes s to rel, creating parent directories as needed.
func (d *Dir) Save(rel string, s *memory.Store) error {
	abs, err := d.Path(rel)
	if err != nil {
		return err
	}
	return memory.SaveConversation(abs, s)
}
