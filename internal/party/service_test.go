package party

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/models"
)

type memPartyStore struct {
	parties map[uuid.UUID]*models.Party
}

func newMemPartyStore() *memPartyStore {
	return &memPartyStore{parties: make(map[uuid.UUID]*models.Party)}
}

func (m *memPartyStore) Create(_ context.Context, email, displayName, phone string) (*models.Party, error) {
	for _, p := range m.parties {
		if p.Email == email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	p := &models.Party{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		Phone:       phone,
		CreatedAt:   time.Now(),
	}
	m.parties[p.ID] = p
	return p, nil
}

func (m *memPartyStore) GetByID(_ context.Context, id uuid.UUID) (*models.Party, error) {
	p, ok := m.parties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *memPartyStore) List(_ context.Context) ([]models.Party, error) {
	var out []models.Party
	for _, p := range m.parties {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memPartyStore) UpdateContact(_ context.Context, id uuid.UUID, email, displayName, phone string) (*models.Party, error) {
	p, ok := m.parties[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Email = email
	p.DisplayName = displayName
	p.Phone = phone
	return p, nil
}

func TestPartyCreate_NormalizesEmail(t *testing.T) {
	svc := NewService(newMemPartyStore(), 0)
	p, err := svc.Create(context.Background(), "  Depot.One@Fuelport.IO ", "Depot One", "+31612345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Email != "depot.one@fuelport.io" {
		t.Fatalf("expected lowercased trimmed email, got %q", p.Email)
	}
}

func TestPartyCreate_RejectsBadEmail(t *testing.T) {
	svc := NewService(newMemPartyStore(), 0)
	_, err := svc.Create(context.Background(), "not-an-email", "Depot", "")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPartyCreate_RequiresDisplayName(t *testing.T) {
	svc := NewService(newMemPartyStore(), 0)
	_, err := svc.Create(context.Background(), "depot@fuelport.io", "   ", "")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPartyCreate_DuplicateEmailIsConflict(t *testing.T) {
	svc := NewService(newMemPartyStore(), 0)
	ctx := context.Background()
	if _, err := svc.Create(ctx, "depot@fuelport.io", "Depot A", ""); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, "depot@fuelport.io", "Depot B", "")
	if !apperr.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestPartyGet_Unknown(t *testing.T) {
	svc := NewService(newMemPartyStore(), 0)
	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPartyUpdateContact(t *testing.T) {
	store := newMemPartyStore()
	svc := NewService(store, 0)
	ctx := context.Background()
	p, err := svc.Create(ctx, "old@fuelport.io", "Depot", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateContact(ctx, p.ID, "NEW@fuelport.io", "Depot Renamed", "+31600000000")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "new@fuelport.io" {
		t.Fatalf("expected normalized email, got %q", updated.Email)
	}
	if updated.DisplayName != "Depot Renamed" {
		t.Fatalf("expected new display name, got %q", updated.DisplayName)
	}
}
