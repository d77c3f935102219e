package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-extractor/internal/types"
)

// DefaultListLimit is used when ListDocuments is called with a non-positive limit
const DefaultListLimit = 50

// ErrIncompleteDocument is returned when saving a document that was never segmented
var ErrIncompleteDocument = errors.New("document is not segmented")

// DocumentSummary is a listing row without the document body
type DocumentSummary struct {
	ID          uuid.UUID    `json:"id"`
	Path        string       `json:"path"`
	Format      types.Format `json:"format"`
	Hash        string       `json:"hash"`
	PageCount   int          `json:"page_count"`
	TextLength  int          `json:"text_length"`
	ExtractedAt time.Time    `json:"extracted_at"`
}

// documentRow is the column form of a segmented document
type documentRow struct {
	ID          uuid.UUID
	Path        string
	Format      string
	State       string
	RawText     string
	Sections    []byte
	Hash        string
	PageCount   int
	TextLength  int
	ExtractedAt time.Time
}

func toRow(doc *types.Document) (*documentRow, error) {
	if doc == nil || doc.State != types.StateSegmented || doc.Sections == nil || doc.Metadata == nil {
		return nil, ErrIncompleteDocument
	}

	sections, err := json.Marshal(doc.Sections)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sections: %w", err)
	}

	extractedAt, err := time.Parse(time.RFC3339, doc.Metadata.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata timestamp %q: %w", doc.Metadata.Timestamp, err)
	}

	return &documentRow{
		ID:          doc.ID,
		Path:        doc.Path,
		Format:      string(doc.Format),
		State:       string(doc.State),
		RawText:     doc.RawText,
		Sections:    sections,
		Hash:        doc.Metadata.Hash,
		PageCount:   doc.Metadata.PageCount,
		TextLength:  doc.Metadata.TextLength,
		ExtractedAt: extractedAt,
	}, nil
}

func (r *documentRow) toDocument() (*types.Document, error) {
	sections := types.NewSections()
	if err := json.Unmarshal(r.Sections, sections); err != nil {
		return nil, fmt.Errorf("failed to decode sections: %w", err)
	}

	return &types.Document{
		ID:       r.ID,
		Path:     r.Path,
		Format:   types.Format(r.Format),
		State:    types.DocumentState(r.State),
		RawText:  r.RawText,
		Sections: sections,
		Metadata: &types.Metadata{
			Timestamp:  r.ExtractedAt.UTC().Format(time.RFC3339),
			Hash:       r.Hash,
			PageCount:  r.PageCount,
			TextLength: r.TextLength,
		},
	}, nil
}

// SaveDocument stores a segmented document, replacing any previous row with the same ID
func (db *DB) SaveDocument(ctx context.Context, doc *types.Document) error {
	row, err := toRow(doc)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO documents (id, path, format, state, raw_text, sections, content_hash, page_count, text_length, extracted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   path = $2, format = $3, state = $4, raw_text = $5, sections = $6,
		   content_hash = $7, page_count = $8, text_length = $9, extracted_at = $10`,
		row.ID, row.Path, row.Format, row.State, row.RawText, string(row.Sections),
		row.Hash, row.PageCount, row.TextLength, row.ExtractedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument retrieves a document by ID. Returns nil, nil when it does not exist.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	var row documentRow
	var sections string
	err := db.pool.QueryRow(ctx,
		`SELECT id, path, format, state, raw_text, sections::text, content_hash, page_count, text_length, extracted_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.Path, &row.Format, &row.State, &row.RawText, &sections,
		&row.Hash, &row.PageCount, &row.TextLength, &row.ExtractedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	row.Sections = []byte(sections)
	return row.toDocument()
}

// FindByHash returns the IDs of documents whose normalized text has the given hash
func (db *DB) FindByHash(ctx context.Context, hash string) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id FROM documents WHERE content_hash = $1 ORDER BY created_at`,
		hash,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents by hash: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListDocuments returns the most recently stored documents, newest first
func (db *DB) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, path, format, content_hash, page_count, text_length, extracted_at
		 FROM documents ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	summaries := []DocumentSummary{}
	for rows.Next() {
		var s DocumentSummary
		var format string
		if err := rows.Scan(&s.ID, &s.Path, &format, &s.Hash, &s.PageCount, &s.TextLength, &s.ExtractedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		s.Format = types.Format(format)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return summaries, nil
}

// DeleteDocument removes a document. Deleting a missing ID is not an error.
func (db *DB) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}
