// Package wallet derives party balances from ledger facts. A balance is
// never stored: every read re-runs the same derivation over orders,
// commissions, and settled transfers, so a partial failure can never
// leave a stored figure drifting from its sources.
package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/ledger"
	"github.com/fuelport/backend/internal/models"
)

// BalanceChange compares the current balance against the balance as of
// the start of the previous calendar month.
type BalanceChange struct {
	Current       decimal.Decimal `json:"current"`
	Prior         decimal.Decimal `json:"prior"`
	PercentChange decimal.Decimal `json:"percent_change"`
	IsIncrease    bool            `json:"is_increase"`
	// HasPrior is false when the prior-period balance was zero; there is
	// no meaningful percentage then and callers render "no prior data".
	HasPrior bool `json:"has_prior"`
}

type Service struct {
	reader       ledger.Reader
	storeTimeout time.Duration
	now          func() time.Time
}

// NewService builds a calculator over the given reader. storeTimeout
// bounds each underlying read; zero disables the bound.
func NewService(reader ledger.Reader, storeTimeout time.Duration) *Service {
	return &Service{reader: reader, storeTimeout: storeTimeout, now: time.Now}
}

// ComputeBalance returns funds currently owed to the party:
//
//	sum(completed order revenue) - sum(commission) - sum(transferred amounts)
//
// floored at zero. An unknown party has no facts and computes to zero.
func (s *Service) ComputeBalance(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	return s.balanceAsOf(ctx, partyID, nil)
}

// ComputeBalanceChange re-runs the derivation with a cutoff at the start
// of the previous calendar month and compares it with now.
func (s *Service) ComputeBalanceChange(ctx context.Context, partyID uuid.UUID) (*BalanceChange, error) {
	current, err := s.balanceAsOf(ctx, partyID, nil)
	if err != nil {
		return nil, err
	}
	cutoff := startOfPreviousMonth(s.now().UTC())
	prior, err := s.balanceAsOf(ctx, partyID, &cutoff)
	if err != nil {
		return nil, err
	}

	change := &BalanceChange{Current: current, Prior: prior}
	if prior.IsZero() {
		// No prior data; a percentage against zero would be infinite.
		change.IsIncrease = current.IsPositive()
		return change, nil
	}
	change.HasPrior = true
	change.PercentChange = current.Sub(prior).Div(prior).Mul(decimal.NewFromInt(100)).Round(2)
	change.IsIncrease = current.GreaterThanOrEqual(prior)
	return change, nil
}

// balanceAsOf is the single derivation both queries share. until == nil
// means "as of the latest ledger read".
func (s *Service) balanceAsOf(ctx context.Context, partyID uuid.UUID, until *time.Time) (decimal.Decimal, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	orders, err := s.reader.OrdersForParty(ctx, partyID, until)
	if err != nil {
		return decimal.Zero, apperr.Store("read orders", err)
	}
	commissions, err := s.reader.CommissionsForParty(ctx, partyID, until)
	if err != nil {
		return decimal.Zero, apperr.Store("read commissions", err)
	}
	transfers, err := s.reader.TransfersForParty(ctx, partyID)
	if err != nil {
		return decimal.Zero, apperr.Store("read transfers", err)
	}

	balance := decimal.Zero
	for _, o := range orders {
		balance = balance.Add(o.TotalAmount)
	}
	for _, c := range commissions {
		balance = balance.Sub(c.Amount)
	}
	for _, t := range transfers {
		if t.Status != models.TransferStatusTransferred {
			continue
		}
		if until != nil && (t.TransferredAt == nil || !t.TransferredAt.Before(*until)) {
			continue
		}
		balance = balance.Sub(t.Amount)
	}
	if balance.IsNegative() {
		return decimal.Zero, nil
	}
	return balance, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func startOfPreviousMonth(t time.Time) time.Time {
	firstOfThis := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfThis.AddDate(0, -1, 0)
}
