// Package docx reads the text of Office Open XML word-processing documents.
//
// It plays the role of the optional document-model library behind the DOCX
// adapter: ExtractRawText takes a path plus an optional document transform and
// returns the plain text of the body, one paragraph per block.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const bodyPart = "word/document.xml"

// ErrNoBody is returned when the archive has no word/document.xml part
var ErrNoBody = errors.New("word/document.xml not found in archive")

// Paragraph is one block of the document body
type Paragraph struct {
	Style string
	Text  string
}

// Document is the parsed body of a .docx file
type Document struct {
	Paragraphs []Paragraph
}

// Input describes what to extract
type Input struct {
	Path string
	// TransformDocument, if set, may rewrite the parsed document before its text is produced.
	TransformDocument func(*Document) *Document
}

// Result holds the extracted text
type Result struct {
	Value string
}

// Library is the DOCX reader
type Library struct{}

// New returns a ready Library
func New() *Library {
	return &Library{}
}

// ExtractRawText parses the document at in.Path and returns its paragraphs as plain text.
// Paragraphs are separated by a blank line.
func (l *Library) ExtractRawText(_ context.Context, in Input) (*Result, error) {
	doc, err := Parse(in.Path)
	if err != nil {
		return nil, err
	}
	if in.TransformDocument != nil {
		if doc = in.TransformDocument(doc); doc == nil {
			doc = &Document{}
		}
	}
	return &Result{Value: doc.Text()}, nil
}

// Text joins the paragraphs, separating them with a blank line
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Paragraphs {
		sb.WriteString(p.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Parse opens the archive at path and decodes its body part
func Parse(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var part *zip.File
	for _, f := range r.File {
		if f.Name == bodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, ErrNoBody
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", bodyPart, err)
	}
	defer rc.Close()

	return decodeBody(rc)
}

// paragraph is an open w:p. Text boxes nest a whole w:p inside a run of the
// enclosing paragraph, so open paragraphs form a stack.
type paragraph struct {
	index int // slot in Document.Paragraphs, reserved when the paragraph opens
	style string
	runs  int // depth of enclosing w:r elements within this paragraph
	text  strings.Builder
}

func decodeBody(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	doc := &Document{}

	var (
		open   []*paragraph
		inText bool
	)
	top := func() *paragraph {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", bodyPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				// reserve the slot so an outer paragraph precedes the text boxes inside it
				open = append(open, &paragraph{index: len(doc.Paragraphs)})
				doc.Paragraphs = append(doc.Paragraphs, Paragraph{})
				inText = false
				continue
			}
			p := top()
			if p == nil {
				continue
			}
			switch t.Name.Local {
			case "r":
				p.runs++
			case "pStyle":
				p.style = attr(t, "val")
			case "t":
				inText = true
			case "tab":
				// outside a run, w:tab is a tab stop definition in w:pPr/w:tabs
				if p.runs > 0 {
					p.text.WriteByte('\t')
				}
			case "br", "cr":
				if p.runs > 0 {
					p.text.WriteByte('\n')
				}
			}

		case xml.CharData:
			if p := top(); inText && p != nil {
				p.text.Write(t)
			}

		case xml.EndElement:
			p := top()
			if p == nil {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				if p.runs > 0 {
					p.runs--
				}
			case "p":
				doc.Paragraphs[p.index] = Paragraph{Style: p.style, Text: p.text.String()}
				open = open[:len(open)-1]
				inText = false
			}
		}
	}

	return doc, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
