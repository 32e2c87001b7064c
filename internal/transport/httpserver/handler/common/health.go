package common

import (
	"net/http"

	"equb-app-go/internal/transport/httpserver/middleware"
)

type healthResponse struct {
	Status string `json:"status"`
}

type meResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{ID: admin.ID, Email: admin.Email})
}
