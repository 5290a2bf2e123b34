package transfer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/middleware"
	"github.com/fuelport/backend/internal/models"
)

type CreateRequest struct {
	PartyID string          `json:"party_id"`
	Amount  decimal.Decimal `json:"amount"`
	Notes   *string         `json:"notes,omitempty"`
}

type RejectRequest struct {
	Reason *string `json:"reason,omitempty"`
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AdminFromCtx(r.Context())
	if actor == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		http.Error(w, "invalid party_id", http.StatusBadRequest)
		return
	}
	created, err := h.svc.Create(r.Context(), partyID, req.Amount, req.Notes)
	if err != nil {
		h.respondErr(w, "create transfer", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondErr(w, "list transfers", err)
		return
	}
	if list == nil {
		list = []models.TransferRequest{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get transfer", err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", func(id, actor uuid.UUID) (*models.TransferRequest, error) {
		return h.svc.Approve(r.Context(), id, actor)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var body RejectRequest
	// Body is optional; a bare reject with no reason is fine.
	_ = json.NewDecoder(r.Body).Decode(&body)
	h.transition(w, r, "reject", func(id, actor uuid.UUID) (*models.TransferRequest, error) {
		return h.svc.Reject(r.Context(), id, actor, body.Reason)
	})
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "settle", func(id, actor uuid.UUID) (*models.TransferRequest, error) {
		return h.svc.Settle(r.Context(), id, actor)
	})
}

func (h *Handler) ApproveAndSettle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve+settle", func(id, actor uuid.UUID) (*models.TransferRequest, error) {
		return h.svc.ApproveAndSettle(r.Context(), id, actor)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, name string, op func(id, actor uuid.UUID) (*models.TransferRequest, error)) {
	actor := middleware.AdminFromCtx(r.Context())
	if actor == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, err := op(id, actor.ID)
	if err != nil {
		h.respondErr(w, name, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "transfer request not found"})
		return
	}
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error(op+" failed", "error", err)
		respondJSON(w, status, map[string]string{"error": op + " failed"})
		return
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
