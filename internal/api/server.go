// Package api exposes the HTTP interface for the site service.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avablackwood/presskit/internal/config"
	"github.com/avablackwood/presskit/internal/intake"
	"github.com/avablackwood/presskit/internal/metrics"
	"github.com/avablackwood/presskit/internal/pipeline"
	"github.com/avablackwood/presskit/internal/preview"

	"go.uber.org/zap"
)

// Server wires HTTP handlers to the intake service, preview source, and
// generation pipeline.
type Server struct {
	router   chi.Router
	cfg      config.Config
	intake   *intake.Service
	pipeline *pipeline.Pipeline
	source   preview.PostSource
	renderer *preview.Renderer
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	cfg config.Config,
	intakeSvc *intake.Service,
	pipe *pipeline.Pipeline,
	source preview.PostSource,
	renderer *preview.Renderer,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	s := &Server{
		cfg:      cfg,
		intake:   intakeSvc,
		pipeline: pipe,
		source:   source,
		renderer: renderer,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(cfg.RequestTimeout()))
		r.Get("/blog/{slug}", s.blogPreview)
		r.Get("/api/social-card/{slug}", s.socialCard)
		r.Post("/api/newsletter", s.newsletter)
		r.Post("/api/contact", s.contact)
	})

	// Generation and announce triggers run longer than a page request.
	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(cfg.PipelineTimeout()))
		r.Post("/api/webhooks/post-published", s.postPublished)
		r.Post("/api/webhooks/generate", s.generate)
		r.Post("/api/social/trigger", s.socialTrigger)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The store and providers are reached lazily; the process being up is
	// the readiness signal.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
