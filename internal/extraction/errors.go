// Package extraction converts résumé files into plain text through format-specific adapters.
package extraction

import (
	"errors"
	"fmt"

	"github.com/jonathan/resume-extractor/internal/types"
)

// Kind classifies extraction failures
type Kind string

const (
	KindUnsupportedFormat     Kind = "unsupported_format"
	KindCapabilityUnavailable Kind = "capability_unavailable"
	KindExtractionFailed      Kind = "extraction_failed"
)

// UnsupportedFormatError is returned when the path's extension has no adapter
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("unsupported format: %s has no file extension", e.Path)
	}
	return fmt.Sprintf("unsupported format: %q (%s)", e.Extension, e.Path)
}

// CapabilityUnavailableError is returned when a recognized format's decoder is not present
type CapabilityUnavailableError struct {
	Format     types.Format
	Capability string
}

func (e *CapabilityUnavailableError) Error() string {
	return fmt.Sprintf("capability unavailable: %s extraction requires %s, which is not available", e.Format, e.Capability)
}

// ExtractionFailedError wraps a decode or read failure of a supported format
type ExtractionFailedError struct {
	Format  types.Format
	Path    string
	Message string
	Cause   error
}

func (e *ExtractionFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *ExtractionFailedError) Unwrap() error {
	return e.Cause
}

func failed(format types.Format, path, message string, cause error) *ExtractionFailedError {
	return &ExtractionFailedError{Format: format, Path: path, Message: message, Cause: cause}
}

// KindOf returns the failure kind of err, or "" if err is not an extraction error
func KindOf(err error) Kind {
	var unsupported *UnsupportedFormatError
	var unavailable *CapabilityUnavailableError
	var extraction *ExtractionFailedError
	switch {
	case errors.As(err, &unsupported):
		return KindUnsupportedFormat
	case errors.As(err, &unavailable):
		return KindCapabilityUnavailable
	case errors.As(err, &extraction):
		return KindExtractionFailed
	default:
		return ""
	}
}

// IsUnsupportedFormat reports whether err is an UnsupportedFormatError
func IsUnsupportedFormat(err error) bool {
	return KindOf(err) == KindUnsupportedFormat
}

// IsCapabilityUnavailable reports whether err is a CapabilityUnavailableError
func IsCapabilityUnavailable(err error) bool {
	return KindOf(err) == KindCapabilityUnavailable
}

// IsExtractionFailed reports whether err is an ExtractionFailedError
func IsExtractionFailed(err error) bool {
	return KindOf(err) == KindExtractionFailed
}
