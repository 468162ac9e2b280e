// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the vendor risk service over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gopkg.in/go-playground/validator.v9"

	"github.com/bonial-oss/vendor-risk/internal/assessment"
	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/ratelimit"
	"github.com/bonial-oss/vendor-risk/internal/sbom"
	"github.com/bonial-oss/vendor-risk/internal/store"
)

// DefaultMaxUploadBytes caps SBOM uploads when Options.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 10 << 20

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
}

// Server holds the dependencies shared by every handler.
type Server struct {
	store    *store.Store
	auth     *auth.Service
	parser   *sbom.Parser
	bank     *assessment.Bank
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
	validate *validator.Validate
	opts     Options
}

// NewServer wires a Server. A nil parser falls back to the default SBOM
// parser and a nil limiter disables contact-form rate limiting.
func NewServer(st *store.Store, authSvc *auth.Service, parser *sbom.Parser, limiter *ratelimit.Limiter, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = sbom.NewParser()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		store:    st,
		auth:     authSvc,
		parser:   parser,
		bank:     assessment.DefaultBank(),
		limiter:  limiter,
		logger:   logger,
		validate: newValidator(),
		opts:     opts,
	}
}

// Routes builds the chi router for the whole API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/signup", s.handleSignUp)
		r.Post("/token", s.handleToken)
	})

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware(s.logger))
		}
		r.Post("/functions/v1/contact-form", s.handleContactForm)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth.Middleware(s.logger))

		r.Get("/profile", s.handleGetProfile)
		r.Patch("/profile", s.handleUpdateProfile)

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", s.handleListVendors)
			r.Post("/", s.handleCreateVendor)
			r.Post("/bulk", s.handleBulkVendors)
			r.Get("/stats", s.handleVendorStats)
			r.Get("/{id}", s.handleGetVendor)
			r.Patch("/{id}", s.handleUpdateVendor)
			r.Delete("/{id}", s.handleDeleteVendor)
		})

		r.Route("/sbom-analyses", func(r chi.Router) {
			r.Get("/", s.handleListAnalyses)
			r.Post("/", s.handleUploadSBOM)
			r.Get("/{id}", s.handleGetAnalysis)
			r.Delete("/{id}", s.handleDeleteAnalysis)
		})

		r.Route("/assessments", func(r chi.Router) {
			r.Get("/questions", s.handleQuestions)
			r.Get("/", s.handleListAssessments)
			r.Post("/", s.handleCreateAssessment)
			r.Get("/{id}", s.handleGetAssessment)
			r.Delete("/{id}", s.handleDeleteAssessment)
			r.Put("/{id}/answers", s.handleAnswerAssessment)
			r.Post("/{id}/complete", s.handleCompleteAssessment)
		})

		r.Post("/risk/calculate", s.handleCalculateRisk)
		r.Get("/risk/factors", s.handleRiskFactors)
		r.Get("/dashboard", s.handleDashboard)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.Ping(); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
