package party

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/models"
)

type Service interface {
	Create(ctx context.Context, email, displayName, phone string) (*models.Party, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Party, error)
	List(ctx context.Context) ([]models.Party, error)
	UpdateContact(ctx context.Context, id uuid.UUID, email, displayName, phone string) (*models.Party, error)
}

// partyStore is the slice of *Repository the service needs.
type partyStore interface {
	Create(ctx context.Context, email, displayName, phone string) (*models.Party, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
	List(ctx context.Context) ([]models.Party, error)
	UpdateContact(ctx context.Context, id uuid.UUID, email, displayName, phone string) (*models.Party, error)
}

var _ partyStore = (*Repository)(nil)

type service struct {
	repo         partyStore
	storeTimeout time.Duration
}

func NewService(repo partyStore, storeTimeout time.Duration) Service {
	return &service{repo: repo, storeTimeout: storeTimeout}
}

var _ Service = (*service)(nil)

func (s *service) Create(ctx context.Context, email, displayName, phone string) (*models.Party, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email %q", email)
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, apperr.Validation("display name is required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	p, err := s.repo.Create(ctx, email, displayName, phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("email %s is already registered to a party", email)
		}
		return nil, apperr.Store("create party", err)
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Store("get party", err)
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]models.Party, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Store("list parties", err)
	}
	return list, nil
}

func (s *service) UpdateContact(ctx context.Context, id uuid.UUID, email, displayName, phone string) (*models.Party, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email %q", email)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	p, err := s.repo.UpdateContact(ctx, id, email, displayName, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("email %s is already registered to a party", email)
		}
		return nil, apperr.Store("update party contact", err)
	}
	return p, nil
}

func (s *service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
