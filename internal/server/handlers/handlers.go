// Package handlers implements HTTP request handlers for the replan API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/replan-systems/replan/internal/lifecycle"
	"github.com/replan-systems/replan/internal/planner"
	"github.com/replan-systems/replan/internal/provider"
)

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	orch     *planner.Orchestrator
	provider provider.Provider
	logger   *slog.Logger
}

// New creates a new Handlers instance.
func New(orch *planner.Orchestrator, prov provider.Provider) *Handlers {
	return &Handlers{
		orch:     orch,
		provider: prov,
		logger:   slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// writeError logs the internal error and returns a sanitized JSON error to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeDomainError maps sentinel errors to HTTP status codes.
func (h *Handlers) writeDomainError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, provider.ErrNotFound):
		h.writeError(w, http.StatusNotFound, msg, err)
	case errors.Is(err, planner.ErrConcurrentRun):
		h.writeError(w, http.StatusConflict, msg, err)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		h.writeError(w, http.StatusUnprocessableEntity, msg, err)
	default:
		h.writeError(w, http.StatusInternalServerError, msg, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
