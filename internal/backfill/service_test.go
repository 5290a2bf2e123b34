package backfill

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/fuelport/backend/internal/apperr"
)

// ---------------------------------------------------------------------------
// In-memory Store. codes holds the assigned code per record id, nil for
// records still missing one.
// ---------------------------------------------------------------------------

type memStore struct {
	codes map[uuid.UUID]*string
	order []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{codes: make(map[uuid.UUID]*string)}
}

func (m *memStore) add(code *string) uuid.UUID {
	id := uuid.New()
	m.codes[id] = code
	m.order = append(m.order, id)
	return id
}

func (m *memStore) ListMissing(_ context.Context, _ string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, id := range m.order {
		if m.codes[id] == nil {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memStore) CodeExists(_ context.Context, _ string, code string) (bool, error) {
	for _, c := range m.codes {
		if c != nil && *c == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) AssignCode(_ context.Context, _ string, id uuid.UUID, code string) (bool, error) {
	existing, ok := m.codes[id]
	if !ok || existing != nil {
		// Same guard as the UPDATE ... WHERE code IS NULL: a record that
		// already has a code is left alone.
		return false, nil
	}
	for _, c := range m.codes {
		if c != nil && *c == code {
			return false, ErrCodeTaken
		}
	}
	m.codes[id] = &code
	return true, nil
}

func str(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun_RejectsUnknownTarget(t *testing.T) {
	svc := NewService(newMemStore(), 0)
	_, err := svc.Run(context.Background(), "customer_codes")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRun_FillsOnlyMissingCodes(t *testing.T) {
	store := newMemStore()
	kept := []uuid.UUID{
		store.add(str("11111111")),
		store.add(str("22222222")),
	}
	missing := []uuid.UUID{store.add(nil), store.add(nil), store.add(nil)}

	svc := NewService(store, 0)
	updated, err := svc.Run(context.Background(), TargetOrderReferenceCodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 3 {
		t.Fatalf("expected 3 records updated, got %d", updated)
	}

	// Pre-existing codes are untouched.
	if *store.codes[kept[0]] != "11111111" || *store.codes[kept[1]] != "22222222" {
		t.Fatal("an existing code was overwritten")
	}

	// Every record now has a distinct fixed-length numeric code.
	seen := make(map[string]bool)
	for _, id := range missing {
		code := store.codes[id]
		if code == nil {
			t.Fatal("a missing code was not filled")
		}
		if len(*code) != codeLength {
			t.Fatalf("expected %d-digit code, got %q", codeLength, *code)
		}
		for _, ch := range *code {
			if ch < '0' || ch > '9' {
				t.Fatalf("non-numeric code %q", *code)
			}
		}
		if seen[*code] {
			t.Fatalf("duplicate code %q", *code)
		}
		seen[*code] = true
	}
}

func TestRun_SecondRunIsNoop(t *testing.T) {
	store := newMemStore()
	store.add(nil)
	store.add(nil)

	svc := NewService(store, 0)
	if _, err := svc.Run(context.Background(), TargetPartyWalletNumbers); err != nil {
		t.Fatalf("first run: %v", err)
	}
	updated, err := svc.Run(context.Background(), TargetPartyWalletNumbers)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected a no-op second run, got %d updates", updated)
	}
}

func TestRun_RetriesOnCollision(t *testing.T) {
	store := newMemStore()
	store.add(str("00000001"))
	id := store.add(nil)

	svc := NewService(store, 0)
	codes := []string{"00000001", "00000002"} // first draw collides
	svc.genCode = func() (string, error) {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code, nil
	}

	updated, err := svc.Run(context.Background(), TargetOrderReferenceCodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 update, got %d", updated)
	}
	if store.codes[id] == nil || *store.codes[id] != "00000002" {
		t.Fatalf("expected the non-colliding code, got %v", store.codes[id])
	}
}

func TestRun_GivesUpAfterExhaustedRetries(t *testing.T) {
	store := newMemStore()
	store.add(str("99999999"))
	store.add(nil)

	svc := NewService(store, 0)
	svc.genCode = func() (string, error) { return "99999999", nil }

	updated, err := svc.Run(context.Background(), TargetOrderReferenceCodes)
	if !apperr.IsTransient(err) {
		t.Fatalf("expected TransientStoreError, got %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected 0 updates, got %d", updated)
	}
}

// A record that gained a code between the scan and the write is skipped,
// not counted, and not overwritten.
func TestRun_SkipsRecordsCodedMidRun(t *testing.T) {
	store := newMemStore()
	id := store.add(nil)
	store.codes[id] = str("33333333") // coded after the hypothetical scan

	svc := NewService(store, 0)
	// ListMissing reflects current state, so force the stale view.
	stale := &staleStore{memStore: store, staleIDs: []uuid.UUID{id}}
	svc.store = stale

	updated, err := svc.Run(context.Background(), TargetOrderReferenceCodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected 0 updates, got %d", updated)
	}
	if *store.codes[id] != "33333333" {
		t.Fatal("the concurrently assigned code was overwritten")
	}
}

type staleStore struct {
	*memStore
	staleIDs []uuid.UUID
}

func (s *staleStore) ListMissing(context.Context, string) ([]uuid.UUID, error) {
	return s.staleIDs, nil
}
