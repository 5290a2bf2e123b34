package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fuelport/backend/internal/models"
)

type contextKey string

const ctxAdminKey contextKey = "admin"

// TokenValidator is the slice of auth.Service this middleware needs.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Admin, error)
}

// WithAdmin returns a context carrying the acting admin.
func WithAdmin(ctx context.Context, admin *models.Admin) context.Context {
	return context.WithValue(ctx, ctxAdminKey, admin)
}

// AdminFromCtx returns the authenticated admin, or nil.
func AdminFromCtx(ctx context.Context) *models.Admin {
	if a, ok := ctx.Value(ctxAdminKey).(*models.Admin); ok {
		return a
	}
	return nil
}

// AdminAuth authenticates requests by validating the Bearer JWT and
// placing the acting admin into the request context. Every transfer
// transition records this identity as its actor.
func AdminAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			token := strings.TrimSpace(authz[len(prefix):])
			if token == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			admin, err := validator.ValidateToken(r.Context(), token)
			if err != nil || admin == nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
		})
	}
}
