package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const ctxPayoutKey contextKey = "parsed_payout"

// parsedPayout is stored in context so the handler can read the create
// request without re-parsing the body.
type parsedPayout struct {
	PartyID uuid.UUID       `json:"party_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// PayoutFromCtx returns the payout parsed by PayoutGuard, or zero values.
func PayoutFromCtx(ctx context.Context) (uuid.UUID, decimal.Decimal) {
	if p, ok := ctx.Value(ctxPayoutKey).(*parsedPayout); ok {
		return p.PartyID, p.Amount
	}
	return uuid.Nil, decimal.Zero
}

// PayoutGuard screens transfer-create requests before they reach the
// state machine: non-positive amounts are rejected early, and when a
// daily cap is configured the party's payouts requested today must stay
// under it. Reads the body to extract the fields, then replaces r.Body
// so downstream handlers can re-read it.
func PayoutGuard(pool *pgxpool.Pool, dailyCap decimal.Decimal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AdminFromCtx(r.Context()) == nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			bodyBytes, err := io.ReadAll(r.Body)
			r.Body.Close()
			if err != nil {
				http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
				return
			}
			// Restore body for the handler.
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			var peek parsedPayout
			if err := json.Unmarshal(bodyBytes, &peek); err != nil {
				http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
				return
			}
			if peek.PartyID == uuid.Nil {
				http.Error(w, `{"error":"party_id is required"}`, http.StatusBadRequest)
				return
			}
			if !peek.Amount.IsPositive() {
				http.Error(w, `{"error":"amount must be > 0"}`, http.StatusBadRequest)
				return
			}

			if dailyCap.IsPositive() {
				requested, err := dailyPayoutFn(r.Context(), pool, peek.PartyID)
				if err != nil {
					http.Error(w, `{"error":"failed to check daily payouts"}`, http.StatusInternalServerError)
					return
				}
				if requested.Add(peek.Amount).GreaterThan(dailyCap) {
					http.Error(w, fmt.Sprintf(`{"error":"daily payouts %s + amount %s exceed cap %s"}`,
						requested, peek.Amount, dailyCap), http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxPayoutKey, &peek)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// dailyPayoutFn computes the amount a party has requested today.
// Tests can replace this to avoid hitting a real database.
var dailyPayoutFn = defaultDailyPayout

// defaultDailyPayout sums today's (UTC) non-rejected requests for the party.
func defaultDailyPayout(ctx context.Context, pool *pgxpool.Pool, partyID uuid.UUID) (decimal.Decimal, error) {
	var total string
	err := pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM transfer_requests
		WHERE party_id = $1 AND status <> 'rejected'
		  AND created_at >= CURRENT_DATE
	`, partyID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}
