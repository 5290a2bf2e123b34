package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/ledger"
	"github.com/fuelport/backend/internal/models"
)

var (
	ErrNotFound = errors.New("transfer request not found")
	// ErrPendingExists is returned when the partial unique index on
	// (party_id) WHERE status = 'pending' rejects an insert.
	ErrPendingExists = errors.New("party already has a pending transfer request")
	// ErrStatusChanged is returned when a compare-and-set UPDATE matched
	// no row: the request left the expected prior state concurrently.
	ErrStatusChanged = errors.New("request is not in the expected status")
)

const transferColumns = `id, party_id, transfer_number, amount::text, status,
	approved_by, rejected_by, rejection_reason, settled_by, receipt_url, notes,
	created_at, transferred_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new pending request. The check-and-create is atomic:
// the store's partial unique index enforces "one pending per party", so
// two racing creates cannot both land. The transfer number comes from a
// sequence, monotonic and human-readable.
func (r *Repository) Create(ctx context.Context, partyID uuid.UUID, amount decimal.Decimal, notes *string) (*models.TransferRequest, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transfer_requests (party_id, transfer_number, amount, status, notes)
		VALUES ($1, 'TRF-' || lpad(nextval('transfer_number_seq')::text, 6, '0'), $2, 'pending', $3)
		RETURNING `+transferColumns+`
	`, partyID, amount.String(), notes)
	req, err := scanTransferRequest(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPendingExists
		}
		return nil, err
	}
	return req, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+transferColumns+` FROM transfer_requests WHERE id = $1
	`, id)
	req, err := scanTransferRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return req, err
}

// Approve moves pending -> approved. The WHERE clause is the compare
// half of the compare-and-set; zero rows affected means the status
// changed under us and the caller must re-read.
func (r *Repository) Approve(ctx context.Context, id, actorID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transfer_requests
		SET status = 'approved', approved_by = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id, actorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.casFailure(ctx, id)
	}
	return nil
}

// Reject moves pending -> rejected, terminal.
func (r *Repository) Reject(ctx context.Context, id, actorID uuid.UUID, reason *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transfer_requests
		SET status = 'rejected', rejected_by = $2, rejection_reason = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id, actorID, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.casFailure(ctx, id)
	}
	return nil
}

// Settle moves approved -> transferred, stamps transferred_at, and
// records who moved the funds. This is the single write that makes the
// balance derivation count the request, so it must never succeed twice.
func (r *Repository) Settle(ctx context.Context, id, actorID uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transfer_requests
		SET status = 'transferred', settled_by = $2, transferred_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'approved'
	`, id, actorID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.casFailure(ctx, id)
	}
	return nil
}

// SetReceiptURL records the uploaded receipt reference. Valid in any
// state; attachment never participates in the state machine.
func (r *Repository) SetReceiptURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transfer_requests SET receipt_url = $2, updated_at = now() WHERE id = $1
	`, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns requests across parties, newest first; empty
// status means all.
func (r *Repository) ListByStatus(ctx context.Context, status string) ([]models.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ledger.ScanTransferRequests(rows)
}

// casFailure distinguishes "no such request" from "status changed".
func (r *Repository) casFailure(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrStatusChanged
}

func scanTransferRequest(row pgx.Row) (*models.TransferRequest, error) {
	var t models.TransferRequest
	var amount string
	if err := row.Scan(&t.ID, &t.PartyID, &t.TransferNumber, &amount, &t.Status,
		&t.ApprovedBy, &t.RejectedBy, &t.RejectionReason, &t.SettledBy, &t.ReceiptURL, &t.Notes,
		&t.CreatedAt, &t.TransferredAt); err != nil {
		return nil, err
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	t.Amount = amt
	return &t, nil
}
