package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/models"
)

// Repository reads raw ledger facts. It never writes; the balance
// calculator re-derives everything from these rows on every call.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// OrdersForParty returns completed orders for a party. until, when set,
// excludes orders completed at or after it (used for prior-period balance).
// Rows with an unparseable amount are skipped: a malformed historical
// record contributes zero, it does not abort the computation.
func (r *Repository) OrdersForParty(ctx context.Context, partyID uuid.UUID, until *time.Time) ([]models.OrderFact, error) {
	query := `
		SELECT id, party_id, reference_code, liters::text, total_amount::text, status, completed_at
		FROM fuel_orders
		WHERE party_id = $1 AND status = 'completed'`
	args := []any{partyID}
	if until != nil {
		query += ` AND completed_at < $2`
		args = append(args, *until)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderFacts(rows)
}

// scanOrderFacts tolerates partially migrated rows: a completed order
// with no completion timestamp or an unparseable amount contributes
// nothing instead of aborting the whole read.
func scanOrderFacts(rows pgx.Rows) ([]models.OrderFact, error) {
	var facts []models.OrderFact
	for rows.Next() {
		var f models.OrderFact
		var liters, total string
		var completedAt *time.Time
		if err := rows.Scan(&f.ID, &f.PartyID, &f.ReferenceCode, &liters, &total, &f.Status, &completedAt); err != nil {
			return nil, err
		}
		if completedAt == nil {
			continue
		}
		f.CompletedAt = *completedAt
		amt, err := decimal.NewFromString(total)
		if err != nil {
			continue
		}
		f.TotalAmount = amt
		if l, err := decimal.NewFromString(liters); err == nil {
			f.Liters = l
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// CommissionsForParty returns commission accruals for a party, optionally
// cut off before until. Malformed amounts are skipped, same as orders.
func (r *Repository) CommissionsForParty(ctx context.Context, partyID uuid.UUID, until *time.Time) ([]models.CommissionFact, error) {
	query := `
		SELECT id, party_id, order_id, amount::text, accrued_at
		FROM commissions
		WHERE party_id = $1`
	args := []any{partyID}
	if until != nil {
		query += ` AND accrued_at < $2`
		args = append(args, *until)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []models.CommissionFact
	for rows.Next() {
		var f models.CommissionFact
		var amount string
		if err := rows.Scan(&f.ID, &f.PartyID, &f.OrderID, &amount, &f.AccruedAt); err != nil {
			return nil, err
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			continue
		}
		f.Amount = amt
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// TransfersForParty returns every transfer request for a party, all
// statuses. The calculator filters to transferred; the dashboard shows
// the rest.
func (r *Repository) TransfersForParty(ctx context.Context, partyID uuid.UUID) ([]models.TransferRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, party_id, transfer_number, amount::text, status,
			approved_by, rejected_by, rejection_reason, settled_by, receipt_url, notes,
			created_at, transferred_at
		FROM transfer_requests
		WHERE party_id = $1
		ORDER BY created_at DESC
	`, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanTransferRequests(rows)
}

// ScanTransferRequests scans transfer_request rows in the canonical column
// order. Shared with the transfer repository so both read the same shape.
func ScanTransferRequests(rows pgx.Rows) ([]models.TransferRequest, error) {
	var list []models.TransferRequest
	for rows.Next() {
		var t models.TransferRequest
		var amount string
		if err := rows.Scan(&t.ID, &t.PartyID, &t.TransferNumber, &amount, &t.Status,
			&t.ApprovedBy, &t.RejectedBy, &t.RejectionReason, &t.SettledBy, &t.ReceiptURL, &t.Notes,
			&t.CreatedAt, &t.TransferredAt); err != nil {
			return nil, err
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			continue
		}
		t.Amount = amt
		list = append(list, t)
	}
	return list, rows.Err()
}
