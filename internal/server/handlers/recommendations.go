package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/replan-systems/replan/internal/lifecycle"
	"github.com/replan-systems/replan/internal/policy"
	"github.com/replan-systems/replan/internal/provider"
	"github.com/replan-systems/replan/pkg/types"
)

// ListRecommendations returns purchase recommendations for a plan run.
func (h *Handlers) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	q := r.URL.Query()

	recs, err := h.provider.ListRecommendations(r.Context(), planID, provider.RecommendationFilter{
		RunID:    q.Get("runId"),
		Product:  q.Get("product"),
		Location: q.Get("location"),
		Status:   types.ApprovalStatus(q.Get("status")),
		PastDue:  q.Get("pastDue") == "true",
	})
	if err != nil {
		h.writeDomainError(w, "failed to list recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs, "count": len(recs)})
}

// GetRecommendation returns a single recommendation by ID.
func (h *Handlers) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.provider.GetRecommendation(r.Context(), chi.URLParam(r, "recID"))
	if err != nil {
		h.writeDomainError(w, "failed to load recommendation", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ApproveRecommendation marks a recommendation approved.
func (h *Handlers) ApproveRecommendation(w http.ResponseWriter, r *http.Request) {
	h.transitionRecommendation(w, r, types.ApprovalApproved)
}

// RejectRecommendation marks a recommendation rejected.
func (h *Handlers) RejectRecommendation(w http.ResponseWriter, r *http.Request) {
	h.transitionRecommendation(w, r, types.ApprovalRejected)
}

// ConvertRecommendation marks an approved recommendation as converted to a
// purchase order.
func (h *Handlers) ConvertRecommendation(w http.ResponseWriter, r *http.Request) {
	h.transitionRecommendation(w, r, types.ApprovalConverted)
}

// ModifyRecommendation adjusts the final order quantity and recomputes the
// order value and approval threshold flag.
func (h *Handlers) ModifyRecommendation(w http.ResponseWriter, r *http.Request) {
	recID := chi.URLParam(r, "recID")

	var body struct {
		FinalOrderQty float64 `json:"finalOrderQty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid modify payload", err)
		return
	}
	if body.FinalOrderQty <= 0 || math.IsNaN(body.FinalOrderQty) || math.IsInf(body.FinalOrderQty, 0) {
		h.writeError(w, http.StatusBadRequest, "finalOrderQty must be positive", nil)
		return
	}

	rec, err := h.provider.GetRecommendation(r.Context(), recID)
	if err != nil {
		h.writeDomainError(w, "failed to load recommendation", err)
		return
	}
	if err := lifecycle.TransitionApproval(rec.ApprovalStatus, types.ApprovalModified); err != nil {
		h.writeDomainError(w, "invalid approval transition", err)
		return
	}

	threshold := h.approvalThreshold(r, rec)

	rec.ApprovalStatus = types.ApprovalModified
	rec.FinalOrderQty = body.FinalOrderQty
	rec.TotalValue = decimal.NewFromFloat(body.FinalOrderQty).Mul(rec.UnitCost)
	rec.ThresholdExceeded = rec.TotalValue.GreaterThan(threshold)
	rec.UpdatedAt = time.Now()

	if err := h.provider.UpdateRecommendation(r.Context(), *rec); err != nil {
		h.writeDomainError(w, "failed to update recommendation", err)
		return
	}
	h.recordRecommendationEvent(r, rec)
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) transitionRecommendation(w http.ResponseWriter, r *http.Request, next types.ApprovalStatus) {
	recID := chi.URLParam(r, "recID")

	rec, err := h.provider.GetRecommendation(r.Context(), recID)
	if err != nil {
		h.writeDomainError(w, "failed to load recommendation", err)
		return
	}
	if err := lifecycle.TransitionApproval(rec.ApprovalStatus, next); err != nil {
		h.writeDomainError(w, "invalid approval transition", err)
		return
	}

	rec.ApprovalStatus = next
	rec.UpdatedAt = time.Now()

	if err := h.provider.UpdateRecommendation(r.Context(), *rec); err != nil {
		h.writeDomainError(w, "failed to update recommendation", err)
		return
	}
	h.recordRecommendationEvent(r, rec)
	writeJSON(w, http.StatusOK, rec)
}

// approvalThreshold resolves the threshold from the pair's stored policy,
// falling back to defaults when none exists.
func (h *Handlers) approvalThreshold(r *http.Request, rec *types.Recommendation) decimal.Decimal {
	pol, err := h.provider.GetPolicy(r.Context(), rec.Product, rec.Location)
	if err != nil {
		if !errors.Is(err, provider.ErrNotFound) {
			h.logger.Warn("loading policy for threshold check", "product", rec.Product,
				"location", rec.Location, "error", err)
		}
		return policy.Defaults(rec.Product, rec.Location).ApprovalThreshold
	}
	return pol.ApprovalThreshold
}

func (h *Handlers) recordRecommendationEvent(r *http.Request, rec *types.Recommendation) {
	if err := h.provider.AppendEvent(r.Context(), types.Event{
		Kind:     types.EventRecommendationUpdated,
		PlanID:   rec.PlanID,
		RunID:    rec.RunID,
		Product:  rec.Product,
		Location: rec.Location,
		Message:  string(rec.ApprovalStatus),
		Details: map[string]interface{}{
			"recommendationId": rec.ID,
			"finalOrderQty":    rec.FinalOrderQty,
		},
		Timestamp: time.Now(),
	}); err != nil {
		h.logger.Error("failed to append event", "recommendation", rec.ID, "error", err)
	}
}
