// Package api provides the HTTP API server and handlers for the archive.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/klausurarchiv/archiv-server/internal/access"
	"github.com/klausurarchiv/archiv-server/internal/auth"
	"github.com/klausurarchiv/archiv-server/internal/http/response"
	"github.com/klausurarchiv/archiv-server/internal/ratelimit"
	"github.com/klausurarchiv/archiv-server/internal/resource"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine       *resource.Engine
	authService  *auth.Service
	rules        *access.RuleSet
	loginLimiter *ratelimit.KeyedLimiter
	maxBody      int64
	router       *chi.Mux
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// maxBody caps request bodies in bytes; 0 means no cap.
func NewServer(engine *resource.Engine, authService *auth.Service, rules *access.RuleSet, loginLimiter *ratelimit.KeyedLimiter, maxBody int64, logger *slog.Logger) *Server {
	s := &Server{
		engine:       engine,
		authService:  authService,
		rules:        rules,
		loginLimiter: loginLimiter,
		maxBody:      maxBody,
		router:       chi.NewRouter(),
		logger:       logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1. Network access rules run before authentication so a denied
	// subnet never reaches the credential path.
	s.router.Route("/v1", func(r chi.Router) {
		r.Use(s.withCaller)

		r.With(s.requireAccess("login")).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		for _, kind := range resource.Kinds {
			r.Route("/"+string(kind), func(r chi.Router) {
				r.Use(s.requireAccess(string(kind)))
				r.Get("/", s.handleList(kind))
				r.Post("/", s.handleCreate(kind))
				r.Get("/{id}", s.handleGet(kind))
				r.Patch("/{id}", s.handleUpdate(kind))
				r.Delete("/{id}", s.handleDelete(kind))
			})
		}

		r.With(s.requireAccess("upload")).Post("/upload", s.handleUpload)
		r.With(s.requireAccess("download")).Get("/download", s.handleDownload)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
