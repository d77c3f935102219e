package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-extractor/internal/db"
	"github.com/jonathan/resume-extractor/internal/events"
	"github.com/jonathan/resume-extractor/internal/extraction"
	"github.com/jonathan/resume-extractor/internal/extraction/extractiontest"
	"github.com/jonathan/resume-extractor/internal/ingestion"
	"github.com/jonathan/resume-extractor/internal/types"
)

// mockStore keeps documents in memory
type mockStore struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]*types.Document
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[uuid.UUID]*types.Document)}
}

func (m *mockStore) SaveDocument(_ context.Context, doc *types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockStore) GetDocument(_ context.Context, id uuid.UUID) (*types.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id], nil
}

func (m *mockStore) ListDocuments(_ context.Context, limit int) ([]db.DocumentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.DocumentSummary{}
	for _, d := range m.docs {
		out = append(out, db.DocumentSummary{ID: d.ID, Path: d.Path, Format: d.Format, Hash: d.Metadata.Hash})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type testServer struct {
	*Server
	bus *events.Bus
}

func newTestServer(t *testing.T, cfg Config, coordOpts []extraction.Option, opts ...Option) *testServer {
	t.Helper()
	bus := events.NewBus()
	coord := extraction.NewCoordinator(append(coordOpts, extraction.WithBus(bus))...)
	s := New(cfg, ingestion.NewService(coord), bus, opts...)
	t.Cleanup(s.rateLimiter.Stop)
	return &testServer{Server: s, bus: bus}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, Config{}, []extraction.Option{extraction.WithoutDocx()})

	rec := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["storage"])
	caps := body["capabilities"].(map[string]any)
	assert.Equal(t, true, caps["pdf"])
	assert.NotEqual(t, true, caps["docx"])
}

func TestHandleExtract_Docx(t *testing.T) {
	ts := newTestServer(t, Config{}, nil)
	path := extractiontest.WriteDocx(t, "jane.docx", "Jane Doe", "Experience", "Did X", "Education", "Degree Y")

	rec := ts.do(t, http.MethodPost, "/extract", ExtractRequest{Path: path})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	doc := decode[types.Document](t, rec)
	assert.Equal(t, types.FormatDocx, doc.Format)
	assert.Equal(t, types.StateSegmented, doc.State)
	assert.Equal(t, []string{"summary", "experience", "education"}, doc.Sections.Names())

	// key order survives the wire
	assert.Less(t, strings.Index(rec.Body.String(), `"experience"`), strings.Index(rec.Body.String(), `"education"`))
}

func TestHandleExtract_TextOnly(t *testing.T) {
	ts := newTestServer(t, Config{}, nil)
	path := extractiontest.WriteDocx(t, "jane.docx", "Jane Doe", "Skills")

	segment := false
	rec := ts.do(t, http.MethodPost, "/extract", ExtractRequest{Path: path, Segment: &segment})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[TextResponse](t, rec)
	assert.Equal(t, types.FormatDocx, resp.Format)
	assert.Contains(t, resp.Text, "Jane Doe")
	assert.NotContains(t, rec.Body.String(), "sections")
}

func TestHandleExtract_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		coordOpts  []extraction.Option
		body       func(t *testing.T) any
		wantStatus int
		wantError  string
	}{
		{
			name:       "invalid JSON",
			body:       func(*testing.T) any { return "{not json" },
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid JSON body",
		},
		{
			name:       "missing path",
			body:       func(*testing.T) any { return ExtractRequest{} },
			wantStatus: http.StatusBadRequest,
			wantError:  "validation error: path",
		},
		{
			name:       "unsupported format",
			body:       func(t *testing.T) any { return ExtractRequest{Path: extractiontest.WriteFile(t, "cv.txt", "hi")} },
			wantStatus: http.StatusUnsupportedMediaType,
			wantError:  "unsupported format",
		},
		{
			name:       "docx unavailable",
			coordOpts:  []extraction.Option{extraction.WithoutDocx()},
			body:       func(t *testing.T) any { return ExtractRequest{Path: extractiontest.WriteDocx(t, "cv.docx", "Jane")} },
			wantStatus: http.StatusNotImplemented,
			wantError:  "capability unavailable",
		},
		{
			name:       "corrupt pdf",
			body:       func(t *testing.T) any { return ExtractRequest{Path: extractiontest.WriteFile(t, "cv.pdf", "junk")} },
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "extraction failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Config{}, tt.coordOpts)

			rec := ts.do(t, http.MethodPost, "/extract", tt.body(t))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec)["error"], tt.wantError)
		})
	}
}

func TestHandleExtract_PersistsWithStore(t *testing.T) {
	store := newMockStore()
	ts := newTestServer(t, Config{}, nil, WithStore(store))
	path := extractiontest.WriteDocx(t, "jane.docx", "Jane", "Skills", "Go")

	rec := ts.do(t, http.MethodPost, "/extract", ExtractRequest{Path: path})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[types.Document](t, rec)

	rec = ts.do(t, http.MethodGet, "/documents/"+doc.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[types.Document](t, rec)
	assert.True(t, doc.Sections.Equal(got.Sections))

	rec = ts.do(t, http.MethodGet, "/documents?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, list["count"])
}

func TestHandleExtract_StoreFailure(t *testing.T) {
	store := newMockStore()
	store.saveErr = errors.New("disk full")
	ts := newTestServer(t, Config{}, nil, WithStore(store))

	rec := ts.do(t, http.MethodPost, "/extract", ExtractRequest{Path: extractiontest.WriteDocx(t, "a.docx", "Jane")})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDocumentsEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		store      Store
		path       string
		wantStatus int
	}{
		{"list without storage", nil, "/documents", http.StatusServiceUnavailable},
		{"get without storage", nil, "/documents/" + uuid.NewString(), http.StatusServiceUnavailable},
		{"bad id", newMockStore(), "/documents/not-a-uuid", http.StatusBadRequest},
		{"missing", newMockStore(), "/documents/" + uuid.NewString(), http.StatusNotFound},
		{"bad limit", newMockStore(), "/documents?limit=-4", http.StatusBadRequest},
		{"empty list", newMockStore(), "/documents", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.store != nil {
				opts = append(opts, WithStore(tt.store))
			}
			ts := newTestServer(t, Config{}, nil, opts...)

			rec := ts.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleSegment(t *testing.T) {
	ts := newTestServer(t, Config{}, nil)

	rec := ts.do(t, http.MethodPost, "/segment", SegmentRequest{Text: "Summary line\nExperience\nDid X\nEducation\nDegree Y"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sections":{"summary":["Summary line"],"experience":["Did X"],"education":["Degree Y"]}}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/segment", SegmentRequest{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sections":{"summary":[]}}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Config{RateLimit: 0.001, Burst: 2}, nil)
	body := ExtractRequest{Path: "/nowhere/cv.txt"}

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/extract", body)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := ts.do(t, http.MethodPost, "/extract", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, rec)["error"])

	// health is never limited
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", nil).Code)
	}
}

func TestCORS(t *testing.T) {
	path := extractiontest.WriteDocx(t, "jane.docx", "Jane")
	body := `{"path": "` + path + `"}`

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"preflight from allowed origin", http.MethodOptions, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"preflight from other origin", http.MethodOptions, "https://evil.example", http.StatusForbidden, ""},
		{"cross-site extract", http.MethodPost, "https://evil.example", http.StatusForbidden, ""},
		{"extract from allowed origin", http.MethodPost, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"extract without origin", http.MethodPost, "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Config{AllowedOrigins: []string{"http://localhost:3000/"}}, nil)

			req := httptest.NewRequest(tt.method, "/extract", strings.NewReader(body))
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			ts.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEqual(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_NoOriginsConfigured(t *testing.T) {
	ts := newTestServer(t, Config{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/extract", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleExtract_Root(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "jane.docx")
	data, err := extractiontest.BuildDocx([]string{"Jane", "Skills", "Go"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(inside, data, 0644))

	outside := extractiontest.WriteDocx(t, "secret.docx", "Payroll")
	link := filepath.Join(root, "link.docx")
	symlinked := os.Symlink(outside, link) == nil

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"absolute inside root", inside, http.StatusOK},
		{"relative to root", "jane.docx", http.StatusOK},
		{"absolute outside root", outside, http.StatusForbidden},
		{"dot-dot escape", "../" + filepath.Base(filepath.Dir(outside)) + "/secret.docx", http.StatusForbidden},
		{"missing file inside root", "missing.docx", http.StatusUnprocessableEntity},
	}
	if symlinked {
		tests = append(tests, struct {
			name       string
			path       string
			wantStatus int
		}{"symlink out of root", link, http.StatusForbidden})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Config{Root: root}, nil)

			rec := ts.do(t, http.MethodPost, "/extract", ExtractRequest{Path: tt.path})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusForbidden {
				assert.NotContains(t, rec.Body.String(), "Payroll")
				assert.Contains(t, decode[map[string]string](t, rec)["error"], "outside the allowed root")
			}
		})
	}
}

func TestHandleExtract_RootAppliesToTextOnly(t *testing.T) {
	ts := newTestServer(t, Config{Root: t.TempDir()}, nil)
	outside := extractiontest.WriteDocx(t, "secret.docx", "Payroll")

	segment := false
	rec := ts.do(t, http.MethodPost, "/extract", ExtractRequest{Path: outside, Segment: &segment})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Payroll")
}

func TestNew_DefaultsToLoopback(t *testing.T) {
	ts := newTestServer(t, Config{Port: 8080}, nil)
	assert.Equal(t, "127.0.0.1:8080", ts.Addr())

	ts = newTestServer(t, Config{Host: "0.0.0.0", Port: 9000}, nil)
	assert.Equal(t, "0.0.0.0:9000", ts.Addr())
}

func TestHandleEvents_StreamsLifecycle(t *testing.T) {
	ts := newTestServer(t, Config{}, nil, WithKeepAlive(time.Hour))
	srv := httptest.NewServer(ts.Handler())
	defer srv.Close()

	path := extractiontest.WriteDocx(t, "jane.docx", "Jane", "Skills", "Go")
	other := extractiontest.WriteDocx(t, "other.docx", "Bob")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?path="+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return ts.bus.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = ts.ingest.Ingest(context.Background(), other, nil)
	require.NoError(t, err)
	_, err = ts.ingest.Ingest(context.Background(), path, nil)
	require.NoError(t, err)

	var names []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			var e events.Event
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e))
			assert.Equal(t, path, e.Path)
		}
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			names = append(names, name)
			if name == events.EventComplete || name == events.EventError {
				break
			}
		}
	}

	require.NotEmpty(t, names)
	assert.Equal(t, events.EventStart, names[0])
	assert.Equal(t, events.EventComplete, names[len(names)-1])
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ts := newTestServer(t, Config{}, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ErrValidation{Field: "path"}, http.StatusBadRequest},
		{&ErrNotFound{Resource: "document"}, http.StatusNotFound},
		{&ErrForbiddenPath{Path: "/etc/cv.pdf"}, http.StatusForbidden},
		{ErrStorageDisabled, http.StatusServiceUnavailable},
		{&extraction.UnsupportedFormatError{Path: "a.txt", Extension: ".txt"}, http.StatusUnsupportedMediaType},
		{&extraction.CapabilityUnavailableError{Format: types.FormatDocx}, http.StatusNotImplemented},
		{&extraction.ExtractionFailedError{Format: types.FormatPDF}, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%T", tt.err)
	}
}
