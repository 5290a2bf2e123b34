package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/models"
)

// injectPayouts swaps the daily-payout lookup for a fixed total and
// restores it when the test finishes.
func injectPayouts(t *testing.T, total string, err error) {
	t.Helper()
	orig := dailyPayoutFn
	dailyPayoutFn = func(context.Context, *pgxpool.Pool, uuid.UUID) (decimal.Decimal, error) {
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(total)
	}
	t.Cleanup(func() { dailyPayoutFn = orig })
}

func guardRequest(t *testing.T, body string, authed bool) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewBufferString(body))
	if authed {
		admin := &models.Admin{ID: uuid.New(), Role: models.AdminRoleFinance}
		req = req.WithContext(context.WithValue(req.Context(), ctxAdminKey, admin))
	}
	return req
}

func runGuard(t *testing.T, dailyCap string, body string, authed bool) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var handlerBody string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		handlerBody = string(b)
		w.WriteHeader(http.StatusCreated)
	})
	capDec, err := decimal.NewFromString(dailyCap)
	if err != nil {
		t.Fatalf("bad cap %q: %v", dailyCap, err)
	}
	rec := httptest.NewRecorder()
	PayoutGuard(nil, capDec)(next).ServeHTTP(rec, guardRequest(t, body, authed))
	return rec, handlerBody
}

func TestPayoutGuard_WithinCapPasses(t *testing.T) {
	injectPayouts(t, "100.00", nil)
	body := `{"party_id":"` + uuid.NewString() + `","amount":"250.00"}`

	rec, handlerBody := runGuard(t, "1000.00", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	// The guard consumed the body; the handler must still see all of it.
	if handlerBody != body {
		t.Fatalf("body not restored for the handler: %q", handlerBody)
	}
}

func TestPayoutGuard_ExceedingCapIsForbidden(t *testing.T) {
	injectPayouts(t, "900.00", nil)
	body := `{"party_id":"` + uuid.NewString() + `","amount":"150.00"}`

	rec, _ := runGuard(t, "1000.00", body, true)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestPayoutGuard_ZeroCapDisablesCheck(t *testing.T) {
	// No injection: a zero cap must not touch the database at all.
	body := `{"party_id":"` + uuid.NewString() + `","amount":"999999.00"}`
	rec, _ := runGuard(t, "0", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestPayoutGuard_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-10.00"} {
		body := `{"party_id":"` + uuid.NewString() + `","amount":"` + amount + `"}`
		rec, _ := runGuard(t, "0", body, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("amount %s: expected 400, got %d", amount, rec.Code)
		}
	}
}

func TestPayoutGuard_RejectsMissingParty(t *testing.T) {
	rec, _ := runGuard(t, "0", `{"amount":"50.00"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPayoutGuard_RejectsMalformedJSON(t *testing.T) {
	rec, _ := runGuard(t, "0", `{"party_id":`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPayoutGuard_RequiresAdmin(t *testing.T) {
	body := `{"party_id":"` + uuid.NewString() + `","amount":"50.00"}`
	rec, _ := runGuard(t, "0", body, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPayoutFromCtx_ExposesParsedFields(t *testing.T) {
	injectPayouts(t, "0", nil)
	partyID := uuid.New()
	var gotParty uuid.UUID
	var gotAmount decimal.Decimal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParty, gotAmount = PayoutFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	body := `{"party_id":"` + partyID.String() + `","amount":"75.50"}`
	rec := httptest.NewRecorder()
	PayoutGuard(nil, decimal.Zero)(next).ServeHTTP(rec, guardRequest(t, body, true))

	if gotParty != partyID {
		t.Fatalf("expected party %s, got %s", partyID, gotParty)
	}
	if !gotAmount.Equal(decimal.RequireFromString("75.50")) {
		t.Fatalf("expected amount 75.50, got %s", gotAmount)
	}
}
