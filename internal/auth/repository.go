package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fuelport/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new admin and returns it.
func (r *Repository) Create(ctx context.Context, email, passwordHash, displayName, role string) (*models.Admin, error) {
	var a models.Admin
	row := r.pool.QueryRow(ctx, `
		INSERT INTO admins (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, display_name, role, created_at
	`, email, passwordHash, displayName, role)
	if err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.Role, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEmail returns the admin including password hash for login.
// Returns nil if not found.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, role, password_hash, created_at
		FROM admins WHERE email = $1
	`, email)
	if err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.Role, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
