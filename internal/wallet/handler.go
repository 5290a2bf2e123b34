package wallet

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/middleware"
)

type BalanceResponse struct {
	PartyID string          `json:"party_id"`
	Balance decimal.Decimal `json:"balance"`
}

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// GET /api/v1/parties/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	partyID, ok := h.authedPartyID(w, r)
	if !ok {
		return
	}
	balance, err := h.svc.ComputeBalance(r.Context(), partyID)
	if err != nil {
		h.respondErr(w, "compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{PartyID: partyID.String(), Balance: balance})
}

// GET /api/v1/parties/{id}/balance-change
func (h *Handler) GetBalanceChange(w http.ResponseWriter, r *http.Request) {
	partyID, ok := h.authedPartyID(w, r)
	if !ok {
		return
	}
	change, err := h.svc.ComputeBalanceChange(r.Context(), partyID)
	if err != nil {
		h.respondErr(w, "compute balance change", err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

func (h *Handler) authedPartyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if middleware.AdminFromCtx(r.Context()) == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	partyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid party id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return partyID, true
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
