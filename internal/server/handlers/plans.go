package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/replan-systems/replan/internal/planner"
	"github.com/replan-systems/replan/pkg/types"
)

// ListPlans returns all plans.
func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.provider.ListPlans(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list plans", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": plans, "count": len(plans)})
}

// CreatePlan registers a new plan in draft status.
func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan types.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid plan payload", err)
		return
	}
	if plan.HorizonBuckets <= 0 {
		h.writeError(w, http.StatusBadRequest, "horizonBuckets must be positive", nil)
		return
	}
	switch plan.Granularity {
	case types.BucketDay, types.BucketWeek, types.BucketMonth:
	case "":
		plan.Granularity = types.BucketWeek
	default:
		h.writeError(w, http.StatusBadRequest, "unknown granularity", nil)
		return
	}

	if plan.ID == "" {
		plan.ID = ulid.Make().String()
	}
	now := time.Now()
	plan.Status = types.PlanDraft
	plan.CurrentRunID = ""
	plan.CreatedAt = now
	plan.UpdatedAt = now

	if err := h.provider.PutPlan(r.Context(), plan); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to store plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// GetPlan returns a single plan by ID.
func (h *Handlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	plan, err := h.provider.GetPlan(r.Context(), planID)
	if err != nil {
		h.writeDomainError(w, "failed to load plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// DeletePlan removes a plan.
func (h *Handlers) DeletePlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	if err := h.provider.DeletePlan(r.Context(), planID); err != nil {
		h.writeDomainError(w, "failed to delete plan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunPlan executes a planning run, optionally scoped to a subset of pairs.
func (h *Handlers) RunPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	var body struct {
		Pairs []types.Pair `json:"pairs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "invalid run payload", err)
		return
	}

	result, err := h.orch.Run(r.Context(), planID, planner.Scope{Pairs: body.Pairs})
	if err != nil {
		h.writeDomainError(w, "run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ArchivePlan transitions a plan to archived.
func (h *Handlers) ArchivePlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	plan, err := h.provider.GetPlan(r.Context(), planID)
	if err != nil {
		h.writeDomainError(w, "failed to load plan", err)
		return
	}

	ok, err := h.provider.CompareAndSwapPlanStatus(r.Context(), planID, plan.Status, types.PlanArchived)
	if err != nil {
		h.writeDomainError(w, "failed to archive plan", err)
		return
	}
	if !ok {
		h.writeError(w, http.StatusConflict, "plan status changed concurrently", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(types.PlanArchived)})
}

// ListEvents returns a plan's audit events, oldest first.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	events, err := h.provider.ListEvents(r.Context(), planID, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}
