// Package ingestion turns résumé files into segmented documents.
package ingestion

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-extractor/internal/extraction"
	"github.com/jonathan/resume-extractor/internal/sections"
	"github.com/jonathan/resume-extractor/internal/types"
)

// DefaultBatchLimit bounds concurrent ingestions when the caller passes no limit
const DefaultBatchLimit = 4

// Service runs extraction, normalization and segmentation for a file
type Service struct {
	coordinator *extraction.Coordinator
	table       sections.Table
	logger      *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithTable replaces the standard header table
func WithTable(t sections.Table) Option {
	return func(s *Service) { s.table = t }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service backed by coordinator
func NewService(coordinator *extraction.Coordinator, opts ...Option) *Service {
	s := &Service{
		coordinator: coordinator,
		table:       sections.StandardTable(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Coordinator returns the underlying extraction coordinator
func (s *Service) Coordinator() *extraction.Coordinator {
	return s.coordinator
}

// Ingest extracts and segments the file at path. The document is only
// returned once it is fully populated; on failure it is discarded.
func (s *Service) Ingest(ctx context.Context, path string, onProgress extraction.ProgressFunc) (*types.Document, error) {
	doc := types.NewDocument(path)

	res, err := s.coordinator.Extract(ctx, path, onProgress)
	if err != nil {
		return nil, err
	}

	text := NormalizeText(res.Text)
	segmented := sections.Segment(text, s.table)
	doc.Complete(text, segmented, types.NewMetadata(text, res.PageCount))

	s.logger.DebugContext(ctx, "document ingested",
		slog.String("id", doc.ID.String()),
		slog.String("path", path),
		slog.String("format", string(doc.Format)),
		slog.Int("sections", segmented.Len()),
		slog.Int("text_length", len(text)),
	)
	return doc, nil
}

// BatchResult is the outcome of ingesting one path
type BatchResult struct {
	Path     string
	Document *types.Document
	Err      error
}

// IngestBatch ingests paths with at most limit running at once. Results are
// returned in input order. A failing path does not stop the others; paths not
// yet started when ctx is cancelled fail with ctx's error.
func (s *Service) IngestBatch(ctx context.Context, paths []string, limit int) []BatchResult {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	results := make([]BatchResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = BatchResult{Path: path, Err: err}
				return nil
			}
			doc, err := s.Ingest(gctx, path, nil)
			results[i] = BatchResult{Path: path, Document: doc, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
