package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"equb-app-go/internal/config"
	"equb-app-go/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Claims is the payload of the admin bearer token. Tokens are issued by the
// identity service; this side only verifies them.
type Claims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

type Admin struct {
	ID    string
	Email string
}

type JWTAuth struct {
	secret    []byte
	skipAuth  bool
	mockAdmin Admin
	log       logger.Logger
}

type contextKey int

const (
	adminIDKey contextKey = iota
	adminKey
)

func NewJWTAuth(cfg config.AuthConfig, log logger.Logger) *JWTAuth {
	return &JWTAuth{
		secret:   []byte(cfg.JWTSecret),
		skipAuth: cfg.SkipAuth,
		mockAdmin: Admin{
			ID: strings.TrimSpace(cfg.MockAdminID),
		},
		log: log,
	}
}

func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			if a.mockAdmin.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock admin id not configured")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), a.mockAdmin)))
			return
		}

		if len(a.secret) == 0 {
			writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w, ErrMissingToken)
			return
		}

		claims, err := a.Validate(token)
		if err != nil {
			a.log.BusinessError("auth.middleware: token rejected", err, "path", r.URL.Path)
			unauthorized(w, ErrInvalidToken)
			return
		}

		admin := Admin{
			ID:    firstNonEmpty(claims.AdminID, claims.Subject),
			Email: claims.Email,
		}
		if admin.ID == "" {
			unauthorized(w, ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
	})
}

// Validate parses an HS256 token and checks its registered claims.
func (a *JWTAuth) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, err error) {
	writeError(w, http.StatusUnauthorized, "invalid_token", err.Error())
}

func WithAdmin(ctx context.Context, admin Admin) context.Context {
	ctx = context.WithValue(ctx, adminKey, admin)
	return context.WithValue(ctx, adminIDKey, admin.ID)
}

func AdminFromContext(ctx context.Context) (Admin, bool) {
	admin, ok := ctx.Value(adminKey).(Admin)
	if !ok || admin.ID == "" {
		return Admin{}, false
	}
	return admin, true
}

func AdminIDFromContext(ctx context.Context) (string, bool) {
	adminID, ok := ctx.Value(adminIDKey).(string)
	if !ok || adminID == "" {
		return "", false
	}
	return adminID, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
