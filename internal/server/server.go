// Package server provides the HTTP API for résumé extraction.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-extractor/internal/db"
	"github.com/jonathan/resume-extractor/internal/events"
	"github.com/jonathan/resume-extractor/internal/ingestion"
	"github.com/jonathan/resume-extractor/internal/server/middleware"
	"github.com/jonathan/resume-extractor/internal/server/ratelimit"
	"github.com/jonathan/resume-extractor/internal/types"
)

// Store persists extracted documents. *db.DB satisfies it.
type Store interface {
	SaveDocument(ctx context.Context, doc *types.Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*types.Document, error)
	ListDocuments(ctx context.Context, limit int) ([]db.DocumentSummary, error)
}

// DefaultHost is the listen host when Config.Host is empty
const DefaultHost = "127.0.0.1"

// Config holds server configuration
type Config struct {
	Host      string
	Port      int
	RateLimit float64 // requests per second on /extract; zero disables limiting
	Burst     int

	// Root, when non-empty, is the only directory /extract may read below.
	// Relative request paths are resolved against it.
	Root string
	// AllowedOrigins are the browser origins answered with CORS headers.
	// Requests carrying any other Origin are refused.
	AllowedOrigins []string
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	ingest      *ingestion.Service
	bus         *events.Bus
	store       Store
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	logger      *slog.Logger
	keepAlive   time.Duration
	root        string
	origins     map[string]bool
}

// Option configures a Server
type Option func(*Server)

// WithStore enables document persistence
func WithStore(store Store) Option {
	return func(s *Server) { s.store = store }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithKeepAlive sets how often idle event streams receive a comment line
func WithKeepAlive(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.keepAlive = d
		}
	}
}

// New creates a new server instance. bus must be the bus the ingestion
// service's coordinator publishes to for /events to observe extractions.
func New(cfg Config, svc *ingestion.Service, bus *events.Bus, opts ...Option) *Server {
	s := &Server{
		ingest:      svc,
		bus:         bus,
		rateLimiter: ratelimit.NewLimiter(ratelimit.NewConfig(cfg.RateLimit, cfg.Burst)),
		validate:    validator.New(),
		logger:      slog.Default(),
		keepAlive:   15 * time.Second,
		root:        resolveRoot(cfg.Root),
		origins:     make(map[string]bool, len(cfg.AllowedOrigins)),
	}
	for _, o := range cfg.AllowedOrigins {
		s.origins[strings.TrimSuffix(o, "/")] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = events.NewBus(events.WithLogger(s.logger))
	}

	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(host, strconv.Itoa(cfg.Port)),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // event streams are long-lived
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(s.withCORS)
	r.Use(s.withRateLimit)

	r.Get("/health", s.handleHealth)
	r.Post("/extract", s.handleExtract)
	r.Post("/segment", s.handleSegment)
	r.Get("/events", s.handleEvents)
	r.Get("/documents", s.handleListDocuments)
	r.Get("/documents/{id}", s.handleGetDocument)

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS answers allowed origins with CORS headers and refuses any other
// request that carries an Origin header. Requests without Origin (CLI clients,
// curl) pass through.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if !s.origins[strings.TrimSuffix(origin, "/")] {
				s.logger.WarnContext(r.Context(), "origin not allowed",
					slog.String("origin", origin), slog.String("path", r.URL.Path))
				s.errorResponse(w, http.StatusForbidden, "origin not allowed")
				return
			}
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(middleware.ClientID(r), r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		secs := max(1, int(info.RetryAfter.Seconds()))
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	s.logger.WarnContext(r.Context(), "rate limit exceeded",
		slog.String("client", middleware.ClientID(r)),
		slog.String("path", r.URL.Path),
		slog.Int("limit", info.Limit),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// resolveRoot returns root as an absolute path with symlinks resolved, or ""
func resolveRoot(root string) string {
	if root == "" {
		return ""
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Clean(root)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// resolvePath maps a requested path to the file to read. With a root
// configured, relative paths are taken from the root and anything that
// resolves outside it, through ".." or a symlink, is refused.
func (s *Server) resolvePath(path string) (string, error) {
	if s.root == "" {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	path = filepath.Clean(path)

	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	} else if dir, err := filepath.EvalSymlinks(filepath.Dir(path)); err == nil {
		target = filepath.Join(dir, filepath.Base(path))
	}

	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ErrForbiddenPath{Path: path}
	}
	return path, nil
}
