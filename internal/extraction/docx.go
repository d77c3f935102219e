package extraction

import (
	"context"
	"os"

	"github.com/jonathan/resume-extractor/internal/docx"
	"github.com/jonathan/resume-extractor/internal/types"
)

// DocxLibrary is the document-model library the DOCX adapter depends on
type DocxLibrary interface {
	ExtractRawText(ctx context.Context, in docx.Input) (*docx.Result, error)
}

// DocxAdapter extracts text from .docx files. The library exposes no
// fine-grained progress, so only coarse milestones are reported.
type DocxAdapter struct {
	lib       DocxLibrary
	transform func(*docx.Document) *docx.Document
}

// NewDocxAdapter creates a DocxAdapter backed by lib
func NewDocxAdapter(lib DocxLibrary, transform func(*docx.Document) *docx.Document) *DocxAdapter {
	return &DocxAdapter{lib: lib, transform: transform}
}

// Extract reports 10% when reading starts, 50% while the library processes, and 100% when done
func (a *DocxAdapter) Extract(ctx context.Context, path string, onProgress ProgressFunc) (*Result, error) {
	if a.lib == nil {
		return nil, &CapabilityUnavailableError{Format: types.FormatDocx, Capability: "a DOCX document library"}
	}

	report(onProgress, ProgressRecord{Stage: StageReading, Progress: 10})
	if _, err := os.Stat(path); err != nil {
		return nil, failed(types.FormatDocx, path, "read file", err)
	}

	report(onProgress, ProgressRecord{Stage: StageProcessing, Progress: 50})
	out, err := a.lib.ExtractRawText(ctx, docx.Input{Path: path, TransformDocument: a.transform})
	if err != nil {
		return nil, failed(types.FormatDocx, path, "decode DOCX", err)
	}

	report(onProgress, ProgressRecord{Stage: StageComplete, Progress: 100})
	return &Result{Text: out.Value}, nil
}
