package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/replan-systems/replan/internal/provider"
)

// ListTrajectory returns planned inventory buckets for a plan run. Without a
// runId query parameter it serves the plan's promoted run.
func (h *Handlers) ListTrajectory(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	q := r.URL.Query()

	buckets, err := h.provider.ListTrajectory(r.Context(), planID, provider.TrajectoryFilter{
		RunID:    q.Get("runId"),
		Product:  q.Get("product"),
		Location: q.Get("location"),
	})
	if err != nil {
		h.writeDomainError(w, "failed to list trajectory", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buckets": buckets, "count": len(buckets)})
}
