// Package docstore persists document bytes on the local storage backend.
package docstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidDestination = errors.New("destination is outside the storage root")

// CollisionPolicy controls what happens when the destination already holds
// a file.
type CollisionPolicy int

const (
	// Rename picks a non-colliding name next to the requested one.
	Rename CollisionPolicy = iota
	// Replace overwrites the existing file in place.
	Replace
)

// WriteResult describes the artifact actually persisted. Filename is the
// basename the storage layer chose, which under the Rename policy can
// differ from the requested one.
type WriteResult struct {
	Filename string
	Path     string
	Size     int64
}

// Writer persists document bytes under a fixed storage root. Destinations
// are given relative to the root and must not escape it.
type Writer struct {
	root string
}

func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

func (w *Writer) Root() string { return w.root }

// Write durably persists data at destination (relative to the root),
// creating intermediate directories. Size is taken from the bytes written,
// after the write completed.
func (w *Writer) Write(data []byte, destination string, policy CollisionPolicy) (WriteResult, error) {
	path, err := w.resolve(destination)
	if err != nil {
		return WriteResult{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("prepare directory: %w", err)
	}

	if policy == Rename {
		path = deduplicate(path)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WriteResult{}, fmt.Errorf("write document: %w", err)
	}

	return WriteResult{
		Filename: filepath.Base(path),
		Path:     path,
		Size:     int64(len(data)),
	}, nil
}

func (w *Writer) resolve(destination string) (string, error) {
	if destination == "" {
		return "", ErrInvalidDestination
	}
	path := filepath.Join(w.root, filepath.FromSlash(destination))

	root := filepath.Clean(w.root)
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", ErrInvalidDestination
	}
	if path == root {
		return "", ErrInvalidDestination
	}
	return path, nil
}

// deduplicate returns the first free path in the sequence
// name.ext, name_0.ext, name_1.ext, ...
func deduplicate(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
