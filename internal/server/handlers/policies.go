package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/replan-systems/replan/internal/policy"
	"github.com/replan-systems/replan/pkg/types"
)

// ListPolicies returns all stored item policies.
func (h *Handlers) ListPolicies(w http.ResponseWriter, r *http.Request) {
	pols, err := h.provider.ListPolicies(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list policies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"policies": pols, "count": len(pols)})
}

// GetPolicy returns the policy for a product/location pair.
func (h *Handlers) GetPolicy(w http.ResponseWriter, r *http.Request) {
	product := chi.URLParam(r, "product")
	location := chi.URLParam(r, "location")

	pol, err := h.provider.GetPolicy(r.Context(), product, location)
	if err != nil {
		h.writeDomainError(w, "failed to load policy", err)
		return
	}
	writeJSON(w, http.StatusOK, pol)
}

// PutPolicy creates or replaces an item policy.
func (h *Handlers) PutPolicy(w http.ResponseWriter, r *http.Request) {
	var pol types.ItemPolicy
	if err := json.NewDecoder(r.Body).Decode(&pol); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid policy payload", err)
		return
	}
	if pol.Product == "" || pol.Location == "" {
		h.writeError(w, http.StatusBadRequest, "product and location are required", nil)
		return
	}
	if err := policy.Validate(pol); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.provider.PutPolicy(r.Context(), pol); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to store policy", err)
		return
	}
	writeJSON(w, http.StatusCreated, pol)
}
