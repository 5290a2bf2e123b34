// Package transfer drives a payout request through its lifecycle:
// pending -> approved -> transferred, or pending -> rejected. Approval is
// administrative sign-off; settlement is the only event that reduces a
// party's computed balance. Each transition is a compare-and-set against
// the store so a retried call can never move a request twice.
package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/models"
)

// Store is the persistence contract the service needs. *Repository is
// the production implementation; tests use an in-memory one.
type Store interface {
	Create(ctx context.Context, partyID uuid.UUID, amount decimal.Decimal, notes *string) (*models.TransferRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)
	Approve(ctx context.Context, id, actorID uuid.UUID) error
	Reject(ctx context.Context, id, actorID uuid.UUID, reason *string) error
	Settle(ctx context.Context, id, actorID uuid.UUID, at time.Time) error
	ListByStatus(ctx context.Context, status string) ([]models.TransferRequest, error)
}

// BalanceComputer is the slice of the wallet service Create needs.
type BalanceComputer interface {
	ComputeBalance(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
}

type Service struct {
	store        Store
	balances     BalanceComputer
	storeTimeout time.Duration
	now          func() time.Time
}

func NewService(store Store, balances BalanceComputer, storeTimeout time.Duration) *Service {
	return &Service{store: store, balances: balances, storeTimeout: storeTimeout, now: time.Now}
}

// Create opens a pending request for partyID. The amount must be positive
// and within the party's balance at call time; the single-pending rule is
// enforced atomically by the store, not by a read here.
func (s *Service) Create(ctx context.Context, partyID uuid.UUID, amount decimal.Decimal, notes *string) (*models.TransferRequest, error) {
	if partyID == uuid.Nil {
		return nil, apperr.Validation("party id is required")
	}
	if !amount.IsPositive() {
		return nil, apperr.Validation("transfer amount must be positive, got %s", amount)
	}
	balance, err := s.balances.ComputeBalance(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(balance) {
		return nil, apperr.Validation("transfer amount %s exceeds available balance %s", amount, balance)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	req, err := s.store.Create(ctx, partyID, amount, notes)
	if err != nil {
		if errors.Is(err, ErrPendingExists) {
			return nil, apperr.Conflict("party %s already has a pending transfer request", partyID)
		}
		return nil, apperr.Store("create transfer request", err)
	}
	return req, nil
}

// Approve records administrative sign-off. Valid only from pending; the
// balance is untouched until Settle.
func (s *Service) Approve(ctx context.Context, id, actorID uuid.UUID) (*models.TransferRequest, error) {
	return s.transition(ctx, id, models.TransferStatusApproved, func(ctx context.Context) error {
		return s.store.Approve(ctx, id, actorID)
	})
}

// Reject closes a pending request without touching the balance. Terminal.
func (s *Service) Reject(ctx context.Context, id, actorID uuid.UUID, reason *string) (*models.TransferRequest, error) {
	return s.transition(ctx, id, models.TransferStatusRejected, func(ctx context.Context) error {
		return s.store.Reject(ctx, id, actorID, reason)
	})
}

// Settle marks funds as moved. Valid only from approved; afterwards the
// balance derivation counts this request's amount, exactly once.
func (s *Service) Settle(ctx context.Context, id, actorID uuid.UUID) (*models.TransferRequest, error) {
	return s.transition(ctx, id, models.TransferStatusTransferred, func(ctx context.Context) error {
		return s.store.Settle(ctx, id, actorID, s.now().UTC())
	})
}

// ApproveAndSettle is the dashboard's one-click action. It runs the two
// transitions back to back; they stay distinct in the audit record.
func (s *Service) ApproveAndSettle(ctx context.Context, id, actorID uuid.UUID) (*models.TransferRequest, error) {
	if _, err := s.Approve(ctx, id, actorID); err != nil {
		return nil, err
	}
	return s.Settle(ctx, id, actorID)
}

// Get returns a single request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Store("get transfer request", err)
	}
	return req, nil
}

// List returns requests filtered by status; empty means all. The status
// value is validated so a typo doesn't silently return nothing.
func (s *Service) List(ctx context.Context, status string) ([]models.TransferRequest, error) {
	switch status {
	case "", models.TransferStatusPending, models.TransferStatusApproved,
		models.TransferStatusRejected, models.TransferStatusTransferred:
	default:
		return nil, apperr.Validation("unknown status %q", status)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	list, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperr.Store("list transfer requests", err)
	}
	return list, nil
}

// transition runs one compare-and-set and maps its failure modes. On a
// CAS miss the current state is included so the caller can decide whether
// its intent already took effect (idempotent-retry discipline).
func (s *Service) transition(ctx context.Context, id uuid.UUID, target string, op func(context.Context) error) (*models.TransferRequest, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := op(ctx); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, ErrStatusChanged) {
			cur, gerr := s.store.GetByID(ctx, id)
			if gerr != nil {
				return nil, apperr.Conflict("request %s is not in the expected status for %s", id, target)
			}
			return nil, apperr.Conflict("request %s is %s, cannot move to %s", id, cur.Status, target)
		}
		return nil, apperr.Store("transition to "+target, err)
	}
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store("re-read after "+target, err)
	}
	return req, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
