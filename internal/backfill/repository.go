package backfill

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Backfill targets: which collection's short-code column to fill.
const (
	TargetPartyWalletNumbers  = "party_wallet_numbers"
	TargetOrderReferenceCodes = "order_reference_codes"
)

// ErrCodeTaken is returned when an assign lost a uniqueness race and the
// caller should try a fresh code.
var ErrCodeTaken = errors.New("short code already taken")

type targetSpec struct {
	table  string
	column string
}

var targets = map[string]targetSpec{
	TargetPartyWalletNumbers:  {table: "parties", column: "wallet_number"},
	TargetOrderReferenceCodes: {table: "fuel_orders", column: "reference_code"},
}

// ValidTarget reports whether name is a known backfill target.
func ValidTarget(name string) bool {
	_, ok := targets[name]
	return ok
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListMissing returns ids of rows whose short-code column is NULL.
func (r *Repository) ListMissing(ctx context.Context, target string) ([]uuid.UUID, error) {
	spec, ok := targets[target]
	if !ok {
		return nil, fmt.Errorf("unknown backfill target %q", target)
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id FROM %s WHERE %s IS NULL ORDER BY created_at`, spec.table, spec.column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CodeExists checks a candidate code against the same column.
func (r *Repository) CodeExists(ctx context.Context, target, code string) (bool, error) {
	spec, ok := targets[target]
	if !ok {
		return false, fmt.Errorf("unknown backfill target %q", target)
	}
	var exists bool
	err := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, spec.table, spec.column), code).Scan(&exists)
	return exists, err
}

// AssignCode writes code to one row, guarded by IS NULL so a record that
// gained a code since the scan (an earlier partial run, or a concurrent
// one) is skipped rather than overwritten. Returns false when skipped.
func (r *Repository) AssignCode(ctx context.Context, target string, id uuid.UUID, code string) (bool, error) {
	spec, ok := targets[target]
	if !ok {
		return false, fmt.Errorf("unknown backfill target %q", target)
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET %s = $1 WHERE id = $2 AND %s IS NULL`, spec.table, spec.column, spec.column), code, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, ErrCodeTaken
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
