package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-extractor/internal/extraction"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbiddenPath indicates a requested file outside the configured root
type ErrForbiddenPath struct {
	Path string
}

func (e *ErrForbiddenPath) Error() string {
	return fmt.Sprintf("path is outside the allowed root: %s", e.Path)
}

// ErrStorageDisabled indicates an endpoint that needs a database was called without one
var ErrStorageDisabled = errors.New("document storage is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var notFound *ErrNotFound
	var forbidden *ErrForbiddenPath

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusServiceUnavailable
	}

	switch extraction.KindOf(err) {
	case extraction.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case extraction.KindCapabilityUnavailable:
		return http.StatusNotImplemented
	case extraction.KindExtractionFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
