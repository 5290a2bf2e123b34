package party

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fuelport/backend/internal/models"
)

var ErrNotFound = errors.New("party not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, email, displayName, phone string) (*models.Party, error) {
	var p models.Party
	row := r.pool.QueryRow(ctx, `
		INSERT INTO parties (email, display_name, phone)
		VALUES ($1, $2, $3)
		RETURNING id, email, display_name, phone, wallet_number, created_at, updated_at
	`, email, displayName, phone)
	if err := scanParty(row, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	var p models.Party
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, phone, wallet_number, created_at, updated_at
		FROM parties WHERE id = $1
	`, id)
	if err := scanParty(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByEmail is the lookup index from contact email to the stable party
// id. Nothing else may key off the email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Party, error) {
	var p models.Party
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, phone, wallet_number, created_at, updated_at
		FROM parties WHERE email = $1
	`, email)
	if err := scanParty(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Party, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, display_name, phone, wallet_number, created_at, updated_at
		FROM parties ORDER BY display_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Party
	for rows.Next() {
		var p models.Party
		if err := scanParty(rows, &p); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateContact changes mutable contact fields. The id never changes, so
// historical ledger facts stay attributable across an email change.
func (r *Repository) UpdateContact(ctx context.Context, id uuid.UUID, email, displayName, phone string) (*models.Party, error) {
	var p models.Party
	row := r.pool.QueryRow(ctx, `
		UPDATE parties
		SET email = $2, display_name = $3, phone = $4, updated_at = now()
		WHERE id = $1
		RETURNING id, email, display_name, phone, wallet_number, created_at, updated_at
	`, id, email, displayName, phone)
	if err := scanParty(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanParty(row pgx.Row, p *models.Party) error {
	return row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Phone, &p.WalletNumber, &p.CreatedAt, &p.UpdatedAt)
}
