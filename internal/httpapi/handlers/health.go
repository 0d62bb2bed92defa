package handlers

import (
	"net/http"

	"mailproof/internal/httpkit"
)

// Health performs a health check of the service.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpkit.WriteJSON(w, 200, map[string]any{
		"status":   "ok",
		"service":  "mailproof-api",
		"version":  "0.1.0",
		"provider": h.sp.Provider(),
	})
}
