package extraction

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-extractor/internal/docx"
	"github.com/jonathan/resume-extractor/internal/events"
	"github.com/jonathan/resume-extractor/internal/types"
)

// Coordinator picks the adapter for a path, runs it once, and reports the
// extraction's lifecycle on the event bus. It holds no per-call state.
type Coordinator struct {
	adapters map[types.Format]Adapter
	bus      *events.Bus
	logger   *slog.Logger

	maxFileSize   int64
	docxLib       DocxLibrary
	docxDisabled  bool
	docxTransform func(*docx.Document) *docx.Document
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithBus sets the bus lifecycle events are published on
func WithBus(b *events.Bus) Option {
	return func(c *Coordinator) { c.bus = b }
}

// WithLogger sets a custom logger for the coordinator
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMaxFileSize bounds how large a PDF may be before it is read into memory
func WithMaxFileSize(n int64) Option {
	return func(c *Coordinator) { c.maxFileSize = n }
}

// WithDocxLibrary replaces the DOCX document library
func WithDocxLibrary(lib DocxLibrary) Option {
	return func(c *Coordinator) { c.docxLib = lib }
}

// WithoutDocx marks the DOCX library as absent. .docx paths then fail with
// CapabilityUnavailableError while PDF extraction is unaffected.
func WithoutDocx() Option {
	return func(c *Coordinator) { c.docxDisabled = true }
}

// WithDocxTransform sets the document transform passed to the DOCX library
func WithDocxTransform(fn func(*docx.Document) *docx.Document) Option {
	return func(c *Coordinator) { c.docxTransform = fn }
}

// WithAdapter overrides the adapter used for a format
func WithAdapter(format types.Format, a Adapter) Option {
	return func(c *Coordinator) { c.adapters[format] = a }
}

// NewCoordinator creates a Coordinator. Capabilities are resolved here, once.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		adapters: make(map[types.Format]Adapter),
		logger:   slog.Default(),
		docxLib:  docx.New(),
	}
	for _, o := range opts {
		o(c)
	}

	if _, ok := c.adapters[types.FormatPDF]; !ok {
		c.adapters[types.FormatPDF] = NewPDFAdapter(c.maxFileSize)
	}
	if _, ok := c.adapters[types.FormatDocx]; !ok && !c.docxDisabled && c.docxLib != nil {
		c.adapters[types.FormatDocx] = NewDocxAdapter(c.docxLib, c.docxTransform)
	}
	if c.docxDisabled {
		delete(c.adapters, types.FormatDocx)
	}

	return c
}

// Capabilities reports which supported formats can currently be served
func (c *Coordinator) Capabilities() map[types.Format]bool {
	caps := make(map[types.Format]bool, 2)
	for _, f := range []types.Format{types.FormatPDF, types.FormatDocx} {
		_, ok := c.adapters[f]
		caps[f] = ok
	}
	return caps
}

// ExtractText returns the plain text of the document at path
func (c *Coordinator) ExtractText(ctx context.Context, path string, onProgress ProgressFunc) (string, error) {
	res, err := c.Extract(ctx, path, onProgress)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Extract dispatches path to exactly one adapter. The bus sees start, then zero or
// more progress events, then exactly one of complete or error. Nothing is retried.
func (c *Coordinator) Extract(ctx context.Context, path string, onProgress ProgressFunc) (*Result, error) {
	format := types.FormatFromPath(path)
	base := events.Event{ExtractionID: uuid.NewString(), Type: format, Path: path}

	c.publish(base, events.EventStart, nil)

	adapter, err := c.resolve(path, format)
	if err != nil {
		return nil, c.fail(ctx, base, err)
	}

	c.logger.DebugContext(ctx, "extracting document", "path", path, "format", format)

	last := 0
	progress := func(rec ProgressRecord) {
		rec.Progress = min(max(rec.Progress, last), 100)
		last = rec.Progress
		report(onProgress, rec)
		c.publish(base, events.EventProgress, func(e *events.Event) {
			e.Stage = rec.Stage
			e.Progress = rec.Progress
			e.PageCount = rec.PageCount
		})
	}

	res, err := adapter.Extract(ctx, path, progress)
	if err != nil {
		if KindOf(err) == "" {
			err = failed(format, path, "adapter error", err)
		}
		return nil, c.fail(ctx, base, err)
	}

	c.publish(base, events.EventComplete, func(e *events.Event) {
		e.Progress = 100
		e.PageCount = res.PageCount
		e.TextLength = len(res.Text)
	})
	c.logger.DebugContext(ctx, "extracted document", "path", path, "format", format,
		"pages", res.PageCount, "text_length", len(res.Text))

	return res, nil
}

func (c *Coordinator) resolve(path string, format types.Format) (Adapter, error) {
	if !format.Supported() {
		return nil, &UnsupportedFormatError{Path: path, Extension: strings.ToLower(filepath.Ext(path))}
	}
	adapter, ok := c.adapters[format]
	if !ok {
		return nil, &CapabilityUnavailableError{Format: format, Capability: "a " + strings.ToUpper(string(format)) + " document library"}
	}
	return adapter, nil
}

func (c *Coordinator) fail(ctx context.Context, base events.Event, err error) error {
	c.publish(base, events.EventError, func(e *events.Event) {
		e.Error = err.Error()
	})
	c.logger.WarnContext(ctx, "extraction failed", "path", base.Path, "format", base.Type,
		"kind", KindOf(err), "error", err)
	return err
}

func (c *Coordinator) publish(base events.Event, name string, fill func(*events.Event)) {
	e := base
	e.Name = name
	if fill != nil {
		fill(&e)
	}
	c.bus.Publish(e)
}
