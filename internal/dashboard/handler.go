// Package dashboard serves the read-only aggregations behind the two
// admin screens: "Main Wallet" (parties with derived balances) and
// "Wallet Requests" (transfer requests with party context). It composes
// the query services; it holds no state and performs no writes.
package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/middleware"
	"github.com/fuelport/backend/internal/models"
	"github.com/fuelport/backend/internal/party"
	"github.com/fuelport/backend/internal/transfer"
	"github.com/fuelport/backend/internal/wallet"
)

type WalletRow struct {
	Party   models.Party          `json:"party"`
	Balance decimal.Decimal       `json:"balance"`
	Change  *wallet.BalanceChange `json:"change,omitempty"`
}

type RequestRow struct {
	Request   models.TransferRequest `json:"request"`
	PartyName string                 `json:"party_name"`
}

type Handler struct {
	parties   party.Service
	wallets   *wallet.Service
	transfers *transfer.Service
	log       *slog.Logger
}

func NewHandler(parties party.Service, wallets *wallet.Service, transfers *transfer.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{parties: parties, wallets: wallets, transfers: transfers, log: log}
}

// GET /api/v1/dashboard/wallet
// Balances are recomputed on every call; the screen re-invokes this
// after each mutation instead of holding any cached derived state.
func (h *Handler) MainWallet(w http.ResponseWriter, r *http.Request) {
	if middleware.AdminFromCtx(r.Context()) == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	parties, err := h.parties.List(r.Context())
	if err != nil {
		h.respondErr(w, "list parties", err)
		return
	}
	rows := make([]WalletRow, 0, len(parties))
	for _, p := range parties {
		change, err := h.wallets.ComputeBalanceChange(r.Context(), p.ID)
		if err != nil {
			h.respondErr(w, "compute balance", err)
			return
		}
		rows = append(rows, WalletRow{Party: p, Balance: change.Current, Change: change})
	}
	writeJSON(w, http.StatusOK, rows)
}

// GET /api/v1/dashboard/requests?status=...
func (h *Handler) WalletRequests(w http.ResponseWriter, r *http.Request) {
	if middleware.AdminFromCtx(r.Context()) == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	requests, err := h.transfers.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondErr(w, "list requests", err)
		return
	}
	// Party names resolved once per party, not per request.
	names := map[string]string{}
	rows := make([]RequestRow, 0, len(requests))
	for _, req := range requests {
		key := req.PartyID.String()
		name, ok := names[key]
		if !ok {
			p, err := h.parties.Get(r.Context(), req.PartyID)
			if err == nil {
				name = p.DisplayName
			}
			names[key] = name
		}
		rows = append(rows, RequestRow{Request: req, PartyName: name})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error(op+" failed", "error", err)
		http.Error(w, op+" failed", status)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
