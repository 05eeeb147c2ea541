package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/replan-systems/replan/internal/lifecycle"
	"github.com/replan-systems/replan/internal/provider"
	"github.com/replan-systems/replan/pkg/types"
)

// ListExceptions returns planning exceptions for a plan run.
func (h *Handlers) ListExceptions(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	q := r.URL.Query()

	excs, err := h.provider.ListExceptions(r.Context(), planID, provider.ExceptionFilter{
		RunID:    q.Get("runId"),
		Product:  q.Get("product"),
		Location: q.Get("location"),
		Type:     types.ExceptionType(q.Get("type")),
		Severity: types.Severity(q.Get("severity")),
		Status:   types.ResolutionStatus(q.Get("status")),
	})
	if err != nil {
		h.writeDomainError(w, "failed to list exceptions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"exceptions": excs, "count": len(excs)})
}

// GetException returns a single exception by ID.
func (h *Handlers) GetException(w http.ResponseWriter, r *http.Request) {
	exc, err := h.provider.GetException(r.Context(), chi.URLParam(r, "excID"))
	if err != nil {
		h.writeDomainError(w, "failed to load exception", err)
		return
	}
	writeJSON(w, http.StatusOK, exc)
}

// ResolveException advances an exception's resolution status.
func (h *Handlers) ResolveException(w http.ResponseWriter, r *http.Request) {
	excID := chi.URLParam(r, "excID")

	var body struct {
		Status types.ResolutionStatus `json:"status"`
		Notes  string                 `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid resolve payload", err)
		return
	}

	exc, err := h.provider.GetException(r.Context(), excID)
	if err != nil {
		h.writeDomainError(w, "failed to load exception", err)
		return
	}
	if err := lifecycle.TransitionResolution(exc.ResolutionStatus, body.Status); err != nil {
		h.writeDomainError(w, "invalid resolution transition", err)
		return
	}

	exc.ResolutionStatus = body.Status
	if body.Notes != "" {
		exc.ResolutionNotes = body.Notes
	}
	exc.UpdatedAt = time.Now()

	if err := h.provider.UpdateException(r.Context(), *exc); err != nil {
		h.writeDomainError(w, "failed to update exception", err)
		return
	}

	if err := h.provider.AppendEvent(r.Context(), types.Event{
		Kind:     types.EventExceptionUpdated,
		PlanID:   exc.PlanID,
		RunID:    exc.RunID,
		Product:  exc.Product,
		Location: exc.Location,
		Message:  string(exc.ResolutionStatus),
		Details: map[string]interface{}{
			"exceptionId": exc.ID,
		},
		Timestamp: time.Now(),
	}); err != nil {
		h.logger.Error("failed to append event", "exception", exc.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, exc)
}
