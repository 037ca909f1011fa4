// Package safety confines transcript files to a data root.
package safety

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Error codes carried by PathError.
const (
	CodeOutsideRoot = "ERR_PATH_OUTSIDE_ROOT"
	CodeDeniedRead  = "ERR_DENIED_READ"
	CodeDeniedWrite = "ERR_DENIED_WRITE"
)

// PathError reports a path rejected by ValidateRelPath or ValidateWritePath.
type PathError struct {
	Code    string
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "safety: " + e.Code + ": " + e.Path + ": " + e.Message
}

// reserved directories never hold transcripts: version control and telemetry artifacts.
var reservedDirs = []string{".git", ".aictx"}

// reservedFiles are module files a transcript must not overwrite, at any depth.
var reservedFiles = []string{"go.mod", "go.sum"}

// InitRoot returns root as an absolute, symlink-resolved directory. An empty
// root means the working directory.
func InitRoot(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "safety: getwd")
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "safety: abs(%s)", root)
	}
	// A root that does not exist yet keeps its absolute form.
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return abs, nil
}

// ValidateRelPath resolves relPath against absRoot for reading. It rejects
// absolute inputs, parent traversal, symlink escapes and reserved directories.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	abs, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if inReservedDir(rel) {
		return "", &PathError{Code: CodeDeniedRead, Path: relPath, Message: "reserved directory"}
	}
	return abs, nil
}

// ValidateWritePath is ValidateRelPath for writing; it also refuses module files.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	abs, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if inReservedDir(rel) {
		return "", &PathError{Code: CodeDeniedWrite, Path: relPath, Message: "reserved directory"}
	}
	base := filepath.Base(rel)
	for _, f := range reservedFiles {
		if base == f {
			return "", &PathError{Code: CodeDeniedWrite, Path: relPath, Message: "reserved file"}
		}
	}
	return abs, nil
}

// resolve returns the absolute candidate and its slash-separated form relative to absRoot.
func resolve(absRoot, relPath string) (string, string, error) {
	if filepath.IsAbs(relPath) {
		return "", "", &PathError{Code: CodeOutsideRoot, Path: relPath, Message: "absolute paths are not allowed"}
	}

	candidate := filepath.Join(absRoot, filepath.Clean(relPath))

	candidate = resolveExisting(candidate)

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", &PathError{Code: CodeOutsideRoot, Path: relPath, Message: "resolves outside the data root"}
	}
	return candidate, filepath.ToSlash(rel), nil
}

// resolveExisting evaluates symlinks on the deepest existing ancestor of p
// and re-joins the missing tail, so a symlinked directory cannot carry new
// directories or files outside the root.
func resolveExisting(p string) string {
	var tail []string
	cur := p
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		tail = append([]string{filepath.Base(cur)}, tail...)
		cur = parent
	}
}

func inReservedDir(rel string) bool {
	for _, d := range reservedDirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	return false
}
