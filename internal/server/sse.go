package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// SSEWriter writes a text/event-stream response. Every write is flushed.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     uint64
}

// NewSSEWriter sends the stream headers. It fails if w cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// SetRetry tells the client how long to wait before reconnecting
func (s *SSEWriter) SetRetry(d time.Duration) error {
	return s.write("retry: " + strconv.FormatInt(d.Milliseconds(), 10) + "\n\n")
}

// WriteEvent sends a named event with a JSON payload. Events are numbered
// from 1 within the stream.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	s.seq++
	return s.write(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, payload))
}

// WriteComment sends a comment line, which clients ignore
func (s *SSEWriter) WriteComment(text string) error {
	return s.write(": " + text + "\n\n")
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

func (s *SSEWriter) write(frame string) error {
	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
