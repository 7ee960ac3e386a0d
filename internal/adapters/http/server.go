package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/ports"
	"github.com/aretw0/ladon/pkg/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIVersion is the version of the read-only results API.
const APIVersion = "0.1.0"

// Config holds the collaborators of the HTTP server.
type Config struct {
	// Store is where run results are read from. Required.
	Store ports.ResultStore
	// Scripts lists the runnable script names served by /scripts.
	Scripts func() []string
	// Gatherer backs /metrics. If nil, /metrics is not mounted.
	Gatherer prometheus.Gatherer
	// Version is reported by /info.
	Version string
	// Logger receives request errors. If nil, slog.Default is used.
	Logger *slog.Logger
}

// Server serves stored run results over HTTP.
type Server struct {
	store   ports.ResultStore
	scripts func() []string
	version string
	logger  *slog.Logger
}

// NewHandler creates the HTTP handler for cfg.
func NewHandler(cfg Config) http.Handler {
	s := &Server{
		store:   cfg.Store,
		scripts: cfg.Scripts,
		version: cfg.Version,
		logger:  cfg.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.version == "" {
		s.version = "dev"
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/scripts", s.ListScripts)
	r.Route("/results", func(r chi.Router) {
		r.Get("/", s.ListResults)
		r.Get("/{id}", s.GetResult)
		r.Delete("/{id}", s.DeleteResult)
		r.Get("/{id}/junit", s.GetResultJUnit)
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "ladon-http",
		"version":     s.version,
		"api_version": APIVersion,
	})
}

// ListScripts handles GET /scripts.
func (s *Server) ListScripts(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if s.scripts != nil {
		names = append(names, s.scripts()...)
	}
	s.writeJSON(w, http.StatusOK, names)
}

// ListResults handles GET /results.
func (s *Server) ListResults(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetResult handles GET /results/{id}. The format query parameter selects
// any render format; JSON is the default.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	format := render.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := render.ParseFormat(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}
	s.renderResult(w, r, format)
}

// GetResultJUnit handles GET /results/{id}/junit.
func (s *Server) GetResultJUnit(w http.ResponseWriter, r *http.Request) {
	s.renderResult(w, r, render.FormatJUnit)
}

// DeleteResult handles DELETE /results/{id}.
func (s *Server) DeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renderResult(w http.ResponseWriter, r *http.Request, f render.Format) {
	snap, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(f))
	if err := render.Render(w, f, snap); err != nil {
		s.logger.Error("failed to render result", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrResultNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, fmt.Sprintf("store error: %v", err), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func contentType(f render.Format) string {
	switch f {
	case render.FormatJSON:
		return "application/json"
	case render.FormatYAML:
		return "application/yaml"
	case render.FormatJUnit:
		return "application/xml"
	case render.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}
