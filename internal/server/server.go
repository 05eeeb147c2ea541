// Package server implements the replan HTTP API server.
package server

import (
	"context"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/replan-systems/replan/internal/planner"
	"github.com/replan-systems/replan/internal/provider"
)

const defaultMaxRequestBody = 1 << 20 // 1 MiB

// Server is the replan HTTP API server.
type Server struct {
	orch     *planner.Orchestrator
	provider provider.Provider
	router   chi.Router
	addr     string
	logger   *slog.Logger
	srv      *http.Server
}

// New creates a new HTTP server.
func New(addr, apiKey string, maxBody int64, orch *planner.Orchestrator, prov provider.Provider) *Server {
	s := &Server{
		orch:     orch,
		provider: prov,
		addr:     addr,
		logger:   slog.Default(),
	}
	if maxBody <= 0 {
		maxBody = defaultMaxRequestBody
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiKeyAuth(apiKey, s.logger))
	r.Use(bodyLimit(maxBody))
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Handle("/debug/vars", expvar.Handler())

	s.router = r
	s.registerRoutes(r)
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	fmt.Printf("replan server listening on %s\n", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler { return s.router }
