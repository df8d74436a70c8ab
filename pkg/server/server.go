// Package server implements the dashboard HTTP API server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/server/handlers"
)

// Server is the dashboard HTTP API server.
type Server struct {
	handlers *handlers.Handlers
	router   chi.Router
	addr     string
	logger   *zap.Logger
	srv      *http.Server
}

// New creates a new HTTP server around the given handler set.
func New(addr string, h *handlers.Handlers, logger *zap.Logger) *Server {
	s := &Server{
		handlers: h,
		addr:     addr,
		logger:   logger.Named("server"),
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	s.router = r
	s.registerRoutes(r)
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving HTTP requests and blocks until the listener closes.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
