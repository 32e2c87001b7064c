package common

import (
	"net/http"

	"equb-app-go/internal/transport/httpserver/middleware"
)

// CacheInvalidator drops read-side caches of an admin after a write.
type CacheInvalidator interface {
	Invalidate(adminID string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(string) {}

func OrNoopInvalidator(inv CacheInvalidator) CacheInvalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

// RequireAdmin writes 401 and returns false when the request carries no admin.
func RequireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return "", false
	}
	return adminID, true
}
