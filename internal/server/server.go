// Package server exposes the cluster, topic, and trend records over a
// read-only HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsintel/internal/config"
	"newsintel/internal/logger"
	"newsintel/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	comps      *pipeline.Components
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server over the shared components.
func New(comps *pipeline.Components, cfg config.Server) *Server {
	s := &Server{
		router: chi.NewRouter(),
		comps:  comps,
		config: cfg,
		log:    logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	readTimeout := parseDuration(cfg.ReadTimeout, 15*time.Second)
	writeTimeout := parseDuration(cfg.WriteTimeout, 30*time.Second)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/clusters", func(r chi.Router) {
			r.Get("/", s.handleListClusters)
			r.Get("/{id}", s.handleGetCluster)
			r.Get("/{id}/articles", s.handleClusterArticles)
			r.Get("/{id}/topics", s.handleClusterTopics)
		})

		r.Route("/trends", func(r chi.Router) {
			r.Get("/", s.handleListTrends)
			r.Get("/latest", s.handleLatestTrend)
			r.Get("/{timestamp}", s.handleGetTrend)
		})
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout.String(),
		"write_timeout", s.httpServer.WriteTimeout.String(),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Router returns the chi router, useful for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
