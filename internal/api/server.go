// Package api implements the Jokebox HTTP server: the joke lookup surface
// plus health, status, metrics, and dataset reload endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"jokebox/internal/auth"
	"jokebox/internal/config"
	"jokebox/internal/dataset"
	"jokebox/internal/logging"
	"jokebox/internal/storage"
)

// ReloadFunc re-reads the configured dataset source and returns a fresh store
type ReloadFunc func() (*dataset.Store, error)

// Deps carries the server's collaborators. Counters, Reload, and Auth are
// optional; nil disables the corresponding behavior.
type Deps struct {
	Store    *dataset.Store
	Reload   ReloadFunc
	Counters *storage.CounterStore
	Auth     *auth.Manager
}

// Server represents the HTTP API server
type Server struct {
	router *http.ServeMux
	server *http.Server
	addr   string
	logger *logging.Logger
	cfg    *config.Config

	store    atomic.Pointer[dataset.Store]
	reload   ReloadFunc
	reloadMu sync.Mutex
	counters *storage.CounterStore
	auth     *auth.Manager
	metrics  *MetricsCollector

	startTime time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(addr string, deps Deps, cfg *config.Config, logger *logging.Logger) *Server {
	s := &Server{
		addr:      addr,
		logger:    logger,
		cfg:       cfg,
		router:    http.NewServeMux(),
		reload:    deps.Reload,
		counters:  deps.Counters,
		auth:      deps.Auth,
		metrics:   NewMetricsCollector(),
		startTime: time.Now(),
	}
	s.store.Store(deps.Store)
	s.metrics.SetJokesTotal(deps.Store.Len())

	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"addr":  s.addr,
		"jokes": s.Store().Len(),
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", nil)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully", nil)
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// Store returns the current dataset store
func (s *Server) Store() *dataset.Store {
	return s.store.Load()
}

// swapStore atomically replaces the dataset store
func (s *Server) swapStore(store *dataset.Store) {
	s.store.Store(store)
	s.metrics.SetJokesTotal(store.Len())
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = GzipMiddleware(s.cfg.Compression, s.logger)(handler)
	handler = s.metricsMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler
}

// metricsMiddleware records request totals and durations per route
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.metrics.RecordRequest(routeLabel(r.URL.Path), wrapped.statusCode, time.Since(start))
	})
}

// routeLabel collapses index paths to a single label so metrics cardinality
// stays bounded
func routeLabel(path string) string {
	switch {
	case path == "/":
		return "/"
	case path == "/jokes":
		return "/jokes"
	case strings.HasPrefix(path, "/jokes/"):
		if path == "/jokes/random" {
			return "/jokes/random"
		}
		return "/jokes/{index}"
	case path == "/health", path == "/ready", path == "/status",
		path == "/reload", path == "/metrics":
		return path
	default:
		return "/{index}"
	}
}
