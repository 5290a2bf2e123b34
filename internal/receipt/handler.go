package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/middleware"
	"github.com/fuelport/backend/internal/transfer"
)

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

// Attach handles multipart uploads to /transfers/{id}/receipt. The form
// field is "file".
func (h *Handler) Attach(w http.ResponseWriter, r *http.Request) {
	if middleware.AdminFromCtx(r.Context()) == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(MaxReceiptBytes + 4096); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, MaxReceiptBytes+1))
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	url, err := h.svc.Attach(r.Context(), requestID, data)
	if err != nil {
		if errors.Is(err, transfer.ErrNotFound) {
			http.Error(w, "transfer request not found", http.StatusNotFound)
			return
		}
		status := apperr.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("attach receipt failed", "error", err)
			http.Error(w, "attach receipt failed", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"receipt_url": url})
}
