package handlers

import "net/http"

// Health reports provider connectivity.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.Ping(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "provider unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
