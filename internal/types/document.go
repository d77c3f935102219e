// Package types provides type definitions for structured data used throughout the resume-extractor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Format identifies the binary format of a résumé document
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatDocx        Format = "docx"
	FormatUnsupported Format = "unsupported"
)

// FormatFromPath derives the document format from the lower-cased file extension.
// Paths with a missing or unrecognized extension resolve to FormatUnsupported.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDocx
	default:
		return FormatUnsupported
	}
}

// Supported reports whether the format has an adapter
func (f Format) Supported() bool {
	return f == FormatPDF || f == FormatDocx
}

// DocumentState tracks where a Document is in its lifecycle
type DocumentState string

const (
	StateUnresolved DocumentState = "unresolved"
	StateExtracted  DocumentState = "extracted"
	StateSegmented  DocumentState = "segmented"
)

// Document is one extraction unit. RawText and Sections are set together by
// Complete; a Document that failed extraction is never handed to callers.
type Document struct {
	ID       uuid.UUID     `json:"id"`
	Path     string        `json:"path"`
	Format   Format        `json:"format"`
	State    DocumentState `json:"state"`
	RawText  string        `json:"raw_text,omitempty"`
	Sections *Sections     `json:"sections,omitempty"`
	Metadata *Metadata     `json:"metadata,omitempty"`
}

// NewDocument creates an unresolved Document with its format fixed from the path
func NewDocument(path string) *Document {
	return &Document{
		ID:     uuid.New(),
		Path:   path,
		Format: FormatFromPath(path),
		State:  StateUnresolved,
	}
}

// Complete populates the extracted text and its sections in a single step
// and moves the document to StateSegmented.
func (d *Document) Complete(rawText string, sections *Sections, meta *Metadata) {
	d.RawText = rawText
	d.Sections = sections
	d.Metadata = meta
	d.State = StateSegmented
}
