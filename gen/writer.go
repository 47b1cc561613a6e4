package gen

import (
	"bytes"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// A Writer lands merged artifacts on disk. It formats Go files and
// skips the write when the content on disk is already identical, so
// file mtimes only move when the generated output actually changed.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Path returns the on-disk path of the named artifact.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// ReadExisting returns the current content of the named artifact, or
// nil when the file does not exist yet.
func (w *Writer) ReadExisting(name string) ([]byte, error) {
	buf, err := os.ReadFile(w.Path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, NewGenerationError("merge", name, "read existing file", err)
	}
	return buf, nil
}

// Format runs goimports over a Go artifact. Non-Go artifacts pass
// through unchanged.
func (w *Writer) Format(a Artifact, content []byte) ([]byte, error) {
	if !a.Go {
		return content, nil
	}
	out, err := imports.Process(w.Path(a.Name), content, nil)
	if err != nil {
		return nil, NewGenerationError("write", a.Name, "format source", err)
	}
	return out, nil
}

// Write persists content for the named artifact. It returns true when
// the file was actually written, false when the content on disk was
// already identical.
func (w *Writer) Write(name string, content, existing []byte) (bool, error) {
	if existing != nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return false, NewGenerationError("write", name, "create output directory", err)
	}
	if err := os.WriteFile(w.Path(name), content, 0o644); err != nil {
		return false, NewGenerationError("write", name, "write file", err)
	}
	return true, nil
}
