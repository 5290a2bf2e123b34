package backfill

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fuelport/backend/internal/middleware"
)

// EnqueueFunc inserts a backfill job. Provided by main as a closure over
// river.Client.Insert.
type EnqueueFunc func(ctx context.Context, args JobArgs) error

type Handler struct {
	enqueue EnqueueFunc
	log     *slog.Logger
}

func NewHandler(enqueue EnqueueFunc, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{enqueue: enqueue, log: log}
}

type runRequest struct {
	Target string `json:"target"`
}

// Trigger enqueues a backfill run and returns 202. The run itself
// happens off the request path; it touches the same collections but
// never the active balance derivation.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	if middleware.AdminFromCtx(r.Context()) == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if !ValidTarget(req.Target) {
		http.Error(w, "unknown backfill target", http.StatusBadRequest)
		return
	}
	if err := h.enqueue(r.Context(), JobArgs{Target: req.Target}); err != nil {
		h.log.Error("enqueue backfill failed", "target", req.Target, "error", err)
		http.Error(w, "failed to enqueue backfill", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "enqueued", "target": req.Target})
}
