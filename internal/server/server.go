package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/edits"
	"github.com/amosWeiskopf/seosmith/pkg/pipeline"
)

const serviceName = "seosmith"

// Store is the persistence the HTTP surface reads and writes directly
type Store interface {
	CreateWebsite(ctx context.Context, w *models.Website) error
	GetWebsite(ctx context.Context, id string) (*models.Website, error)
	ListWebsites(ctx context.Context, userID string) ([]models.Website, error)
	ListAnalyses(ctx context.Context, websiteID string, limit int) ([]models.Analysis, error)
	SaveAccount(ctx context.Context, a *models.ConnectedAccount) error
}

// Config wires the server to its services
type Config struct {
	Service *pipeline.Service
	Edits   *edits.Manager
	Store   Store
	Logger  *slog.Logger
	Version string
}

// Server is the HTTP API: the backend contract plus website and edit routes
type Server struct {
	service *pipeline.Service
	edits   *edits.Manager
	store   Store
	logger  *slog.Logger
	version string
	router  chi.Router
}

// New creates a Server and mounts its routes
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		service: cfg.Service,
		edits:   cfg.Edits,
		store:   cfg.Store,
		logger:  logger.With("component", "server"),
		version: version,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	// Backend contract
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/generate", s.handleGenerate)
	r.Post("/push", s.handlePush)

	// Accounts
	r.Post("/accounts", s.handleSaveAccount)

	// Websites
	r.Post("/websites", s.handleCreateWebsite)
	r.Get("/websites", s.handleListWebsites)
	r.Get("/websites/{id}", s.handleGetWebsite)
	r.Get("/websites/{id}/analyses", s.handleListAnalyses)
	r.Post("/websites/{id}/analyze", s.handleAnalyzeWebsite)

	// Edits
	r.Get("/websites/{id}/edits", s.handleListEdits)
	r.Post("/websites/{id}/edits", s.handleCreateEdit)
	r.Get("/edits/{id}", s.handleGetEdit)
	r.Get("/edits/{id}/preview", s.handlePreviewEdit)
	r.Post("/edits/{id}/apply", s.handleApplyEdit)
	r.Post("/edits/{id}/cancel", s.handleCancelEdit)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return models.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var fetchErr *models.FetchError
	var pushErr *models.PushError
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEditNotPending):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchErr), errors.As(err, &pushErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn(op, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}
