package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/fuelport/backend/internal/models"
)

type fakeValidator struct {
	admin *models.Admin
	err   error
}

func (f fakeValidator) ValidateToken(_ context.Context, _ string) (*models.Admin, error) {
	return f.admin, f.err
}

func runAdminAuth(t *testing.T, validator TokenValidator, authz string) (*httptest.ResponseRecorder, *models.Admin) {
	t.Helper()
	var seen *models.Admin
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = AdminFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transfers", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	AdminAuth(validator)(next).ServeHTTP(rec, req)
	return rec, seen
}

func TestAdminAuth_ValidToken(t *testing.T) {
	admin := &models.Admin{ID: uuid.New(), Email: "ops@fuelport.io", Role: models.AdminRoleFinance}
	rec, seen := runAdminAuth(t, fakeValidator{admin: admin}, "Bearer good-token")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.ID != admin.ID {
		t.Fatal("expected the admin to reach the handler context")
	}
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	rec, seen := runAdminAuth(t, fakeValidator{}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if seen != nil {
		t.Fatal("handler must not run without credentials")
	}
}

func TestAdminAuth_NonBearerScheme(t *testing.T) {
	rec, _ := runAdminAuth(t, fakeValidator{}, "Basic dXNlcjpwYXNz")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminAuth_InvalidToken(t *testing.T) {
	rec, seen := runAdminAuth(t, fakeValidator{err: errors.New("token expired")}, "Bearer stale")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if seen != nil {
		t.Fatal("handler must not run with an invalid token")
	}
}

func TestAdminFromCtx_EmptyContext(t *testing.T) {
	if AdminFromCtx(context.Background()) != nil {
		t.Fatal("expected nil admin from an empty context")
	}
}
