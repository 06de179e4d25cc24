// Package server hosts a page on the web surface behind a chi router.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-crudform/pkg/metrics"
	"github.com/goliatone/go-crudform/pkg/page"
	"github.com/goliatone/go-crudform/pkg/surface/web"
)

// DefaultSessionTTL is how long an idle browser session keeps its form state.
const DefaultSessionTTL = 30 * time.Minute

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records render passes and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithEngine replaces the embedded page layout.
func WithEngine(engine *web.Engine) Option {
	return func(s *Server) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithDocument serves doc at /openapi.json.
func WithDocument(doc *openapi3.T) Option {
	return func(s *Server) {
		s.document = doc
	}
}

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessions.ttl = ttl
	}
}

// Server renders one page per request.
type Server struct {
	page     page.Page
	engine   *web.Engine
	sessions *sessions
	metrics  *metrics.Metrics
	document *openapi3.T
	logger   *slog.Logger
	router   chi.Router
}

// New builds a server for p.
func New(p page.Page, opts ...Option) (*Server, error) {
	if p == nil {
		return nil, errors.New("server: page is required")
	}
	s := &Server{
		page:     p,
		sessions: newSessions(DefaultSessionTTL),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.engine == nil {
		engine, err := web.NewEngine()
		if err != nil {
			return nil, err
		}
		s.engine = engine
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Post("/", s.handlePage)
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	if s.document != nil {
		r.Get("/openapi.json", s.handleDocument)
	}
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.acquire(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	surf, err := web.NewSurface(r, sess.state)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	start := time.Now()
	renderErr := s.page.Render(r.Context(), surf)
	if s.metrics != nil {
		s.metrics.ObserveRender(surf.Section(), start, renderErr)
	}
	if renderErr != nil {
		s.logger.Error("render failed",
			"section", surf.Section(),
			"request_id", middleware.GetReqID(r.Context()),
			"error", renderErr,
		)
		surf.Error(page.Describe(renderErr))
	}

	var buf bytes.Buffer
	if err := surf.Write(&buf, s.engine); err != nil {
		s.logger.Error("write page failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.document)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
