package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/avablackwood/presskit/internal/cms"
	"github.com/avablackwood/presskit/internal/intake"
	"github.com/avablackwood/presskit/internal/metrics"
	"github.com/avablackwood/presskit/internal/preview"
	"github.com/avablackwood/presskit/internal/social"
)

// Preview documents change rarely: one hour at the edge, a day at the CDN.
const previewCacheControl = "public, max-age=3600, s-maxage=86400"

func (s *Server) canonicalURL(slug string) string {
	return fmt.Sprintf("%s/blog/%s", strings.TrimRight(s.cfg.Site.BaseURL, "/"), slug)
}

// blogPreview routes a slug request by User-Agent: crawlers get the metadata
// document, humans get a 302 to the canonical page. Lookup or render errors
// degrade to a redirect; a raw 500 mid-crawl poisons a platform's cached
// preview.
func (s *Server) blogPreview(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	canonical := s.canonicalURL(slug)

	if !preview.IsSocialCrawler(r.Header.Get("User-Agent")) {
		metrics.ObservePreview("redirect")
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}

	post, err := s.source.Lookup(r.Context(), slug)
	if errors.Is(err, cms.ErrNotFound) {
		metrics.ObservePreview("not_found")
		w.Header().Set("X-Served-By", "preview-404")
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("preview lookup failed", zap.String("slug", slug), zap.Error(err))
		metrics.ObservePreview("error")
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}

	html, err := s.renderer.Render(post)
	if err != nil {
		s.logger.Error("preview render failed", zap.String("slug", slug), zap.Error(err))
		metrics.ObservePreview("error")
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}

	metrics.ObservePreview("crawler")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", previewCacheControl)
	w.Header().Set("X-Served-By", "preview-crawler")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error("preview write failed", zap.Error(err))
	}
}

// socialCard serves the card document regardless of User-Agent; the URL is
// only handed to platforms, never to visitors.
func (s *Server) socialCard(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := s.source.Lookup(r.Context(), slug)
	if errors.Is(err, cms.ErrNotFound) {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("social card lookup failed", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := s.renderer.Render(post)
	if err != nil {
		s.logger.Error("social card render failed", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", previewCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error("social card write failed", zap.Error(err))
	}
}

func intakeStatusCode(status intake.Status) int {
	switch status {
	case intake.StatusSuccess:
		return http.StatusOK
	case intake.StatusInvalid:
		return http.StatusBadRequest
	case intake.StatusDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) newsletter(w http.ResponseWriter, r *http.Request) {
	var req intake.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	result := s.intake.Subscribe(r.Context(), req)
	metrics.ObserveIntake("newsletter", string(result.Status))
	writeJSON(w, intakeStatusCode(result.Status), result)
}

func (s *Server) contact(w http.ResponseWriter, r *http.Request) {
	var req intake.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	result := s.intake.Contact(r.Context(), req)
	metrics.ObserveIntake("contact", string(result.Status))
	writeJSON(w, intakeStatusCode(result.Status), result)
}

// slugField accepts either a plain string or the store's {"current": "..."}
// object form.
type slugField struct {
	Current string
}

func (s *slugField) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.Current = plain
		return nil
	}
	var obj struct {
		Current string `json:"current"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("slug must be a string or an object with current: %w", err)
	}
	s.Current = obj.Current
	return nil
}

type publishHookRequest struct {
	ID    string    `json:"_id"`
	Type  string    `json:"_type"`
	Title string    `json:"title"`
	Slug  slugField `json:"slug"`
}

// postPublished handles the store's publish webhook: it re-announces the new
// post through the automation webhook channel.
func (s *Server) postPublished(w http.ResponseWriter, r *http.Request) {
	var req publishHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Type != "post" || req.Slug.Current == "" {
		writeError(w, http.StatusBadRequest, "not a blog post publication")
		return
	}

	result, err := s.pipeline.AnnouncePost(r.Context(), req.Slug.Current, "zapier")
	if errors.Is(err, cms.ErrNotFound) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error("publish webhook failed", zap.String("slug", req.Slug.Current), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "automation failed")
		return
	}
	s.observeAnnounces(result.Announce)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Social media automation triggered",
		"result":  result,
	})
}

// generate runs the full content generation pipeline synchronously. The
// route's timeout is raised accordingly.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := s.pipeline.Run(r.Context())
	if err != nil {
		metrics.ObservePipelineRun("failed", time.Since(start))
		s.logger.Error("generation run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "content generation failed")
		return
	}
	metrics.ObservePipelineRun("published", time.Since(start))
	s.observeAnnounces(result.Announce)
	writeJSON(w, http.StatusOK, result)
}

type socialTriggerRequest struct {
	Slug   string `json:"slug"`
	Method string `json:"method"`
}

// socialTrigger re-announces an existing post on demand. method selects the
// channels: zapier, direct, or both (the default).
func (s *Server) socialTrigger(w http.ResponseWriter, r *http.Request) {
	var req socialTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Slug == "" {
		writeError(w, http.StatusBadRequest, "missing required parameter: slug")
		return
	}

	var methods []string
	switch req.Method {
	case "zapier":
		methods = []string{"zapier"}
	case "direct":
		methods = []string{"direct"}
	case "both", "":
		methods = []string{"zapier", "direct"}
	default:
		writeError(w, http.StatusBadRequest, "method must be zapier, direct, or both")
		return
	}

	result, err := s.pipeline.AnnouncePost(r.Context(), req.Slug, methods...)
	if errors.Is(err, cms.ErrNotFound) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error("social trigger failed", zap.String("slug", req.Slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "social trigger failed")
		return
	}
	s.observeAnnounces(result.Announce)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"methods_used": methods,
		"result":       result,
	})
}

func (s *Server) observeAnnounces(results []social.Result) {
	for _, r := range results {
		metrics.ObserveAnnounce(r.Channel, r.OK)
	}
}
