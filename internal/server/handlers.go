package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-extractor/internal/schemas"
	"github.com/jonathan/resume-extractor/internal/sections"
	"github.com/jonathan/resume-extractor/internal/types"
)

// ExtractRequest is the body of POST /extract
type ExtractRequest struct {
	Path    string `json:"path" validate:"required"`
	Segment *bool  `json:"segment,omitempty"` // default true
}

// TextResponse is returned by POST /extract when segmentation is off
type TextResponse struct {
	Path   string       `json:"path"`
	Format types.Format `json:"format"`
	Text   string       `json:"text"`
}

// SegmentRequest is the body of POST /segment
type SegmentRequest struct {
	Text string `json:"text"`
}

// SegmentResponse carries the sections of POST /segment
type SegmentResponse struct {
	Sections *types.Sections `json:"sections"`
}

// sseRetry is the reconnect delay suggested to event stream clients
const sseRetry = 3 * time.Second

// handleHealth returns server health status and extraction capabilities
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"capabilities": s.ingest.Coordinator().Capabilities(),
		"storage":      s.store != nil,
	})
}

// handleExtract extracts and, unless disabled, segments a file on the server's filesystem
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := s.validateRequest(&req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	path, err := s.resolvePath(req.Path)
	if err != nil {
		s.logger.WarnContext(r.Context(), "extract refused", slog.String("path", req.Path))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	req.Path = path

	ctx := r.Context()
	if req.Segment != nil && !*req.Segment {
		text, err := s.ingest.Coordinator().ExtractText(ctx, req.Path, nil)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		s.jsonResponse(w, http.StatusOK, TextResponse{
			Path:   req.Path,
			Format: types.FormatFromPath(req.Path),
			Text:   text,
		})
		return
	}

	doc, err := s.ingest.Ingest(ctx, req.Path, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if err := schemas.ValidateDocument(doc); err != nil {
		s.logger.WarnContext(ctx, "document does not match schema",
			slog.String("id", doc.ID.String()), slog.Any("error", err))
	}

	if s.store != nil {
		if err := s.store.SaveDocument(ctx, doc); err != nil {
			s.logger.ErrorContext(ctx, "failed to save document",
				slog.String("id", doc.ID.String()), slog.Any("error", err))
			s.errorResponse(w, http.StatusInternalServerError, "failed to save document")
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, doc)
}

// handleSegment segments posted text with the standard table
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req SegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, SegmentResponse{Sections: sections.SegmentStandard(req.Text)})
}

// handleEvents streams extraction lifecycle events. An optional path query
// parameter restricts the stream to one file.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sub := s.bus.Subscribe()
	defer sub.Close()

	pathFilter := r.URL.Query().Get("path")
	if err := sse.SetRetry(sseRetry); err != nil {
		return
	}
	if err := sse.WriteComment("connected"); err != nil {
		return
	}

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		case e, ok := <-sub.C:
			if !ok {
				return
			}
			if pathFilter != "" && e.Path != pathFilter {
				continue
			}
			if err := sse.WriteEvent(e.Name, e); err != nil {
				return
			}
		}
	}
}

// handleListDocuments lists stored documents, newest first
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, HTTPStatus(ErrStorageDisabled), ErrStorageDisabled.Error())
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			err := &ErrValidation{Field: "limit", Message: "must be a non-negative integer"}
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		limit = n
	}

	docs, err := s.store.ListDocuments(r.Context(), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list documents", slog.Any("error", err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

// handleGetDocument returns one stored document
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, HTTPStatus(ErrStorageDisabled), ErrStorageDisabled.Error())
		return
	}

	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		verr := &ErrValidation{Field: "id", Message: "must be a UUID"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to get document", slog.Any("error", err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	if doc == nil {
		nf := &ErrNotFound{Resource: "document", ID: idParam}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// validateRequest runs struct validation and reports the first failing field
func (s *Server) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ErrValidation{Field: strings.ToLower(fe.Field()), Message: "failed '" + fe.Tag() + "'"}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}
