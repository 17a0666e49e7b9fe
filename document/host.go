package document

import (
	"errors"
	"fmt"
)

// ErrNoDocument indicates an operation that requires an active document
// found none.
var ErrNoDocument = errors.New("no active document")

// Host is the introspection surface a scene-authoring host supplies to the
// engine. It covers exactly three capabilities: enumerating the active
// document, loading a file as the active document, and reporting the active
// document's backing path and dirty state.
//
// Load is destructive: the host holds a single active document, and loading
// replaces it. Callers owning an unsaved session must snapshot before
// loading anything else.
type Host interface {
	// Load reads path and makes it the active document.
	Load(path string) (*Document, error)

	// Active returns the active document, or nil when none is loaded.
	Active() *Document

	// ActivePath returns the active document's backing file path, or ""
	// for an in-memory document that was never saved.
	ActivePath() string

	// Unsaved reports whether the active document has unsaved changes.
	Unsaved() bool
}

// FileHost is the reference Host implementation over scene files on disk.
// It models the single-active-document constraint: Load replaces whatever
// was active before.
//
// FileHost is not safe for concurrent use; the engine is single-session by
// contract.
type FileHost struct {
	active *Document
	path   string
	dirty  bool
}

// NewFileHost returns a FileHost with no active document.
func NewFileHost() *FileHost {
	return &FileHost{}
}

// Load parses the scene file at path and makes it the active document.
func (h *FileHost) Load(path string) (*Document, error) {
	doc, err := LoadScene(path)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	h.active = doc
	h.path = path
	h.dirty = false
	return doc, nil
}

// Active returns the active document, or nil.
func (h *FileHost) Active() *Document { return h.active }

// ActivePath returns the active document's backing path, or "".
func (h *FileHost) ActivePath() string { return h.path }

// Unsaved reports whether the active document has unsaved changes.
func (h *FileHost) Unsaved() bool { return h.dirty }

// SetActive installs an in-memory document as the active one. An empty
// path marks the document as having no backing file.
func (h *FileHost) SetActive(doc *Document, path string) {
	h.active = doc
	h.path = path
	h.dirty = false
}

// MarkDirty flags the active document as modified since load.
func (h *FileHost) MarkDirty() { h.dirty = true }
