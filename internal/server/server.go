// Package server provides the HTTP API for error diagnosis.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 64 << 10

// Options configures optional parts of the Server.
type Options struct {
	// Templates enables GET /api/v1/templates.
	Templates TemplateSource
	// Gatherer enables GET /metrics.
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Logger      *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	svc       DiagnosisService
	templates TemplateSource
	gatherer  prometheus.Gatherer
	origins   []string
	logger    *slog.Logger
}

// New creates a new Server.
func New(svc DiagnosisService, opts Options) *Server {
	s := &Server{
		svc:       svc,
		templates: opts.Templates,
		gatherer:  opts.Gatherer,
		origins:   opts.CORSOrigins,
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/api/v1/health", s.handleHealth)

	r.Post("/api/v1/diagnose", s.handleDiagnose)
	r.Post("/api/v1/validate", s.handleValidate)

	r.Route("/api/v1/profiles/{userID}", func(r chi.Router) {
		r.Get("/", s.handleGetProfile)
		r.Put("/", s.handlePutProfile)
	})
	r.Get("/api/v1/users/{userID}/history", s.handleHistory)

	if s.templates != nil {
		r.Get("/api/v1/templates", s.handleTemplates)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
