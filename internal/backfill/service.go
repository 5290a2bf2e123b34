// Package backfill assigns missing short reference codes to historical
// records in bulk. Runs are idempotent: rows that already carry a code
// are never touched, so an interrupted run needs no recovery beyond
// running again.
package backfill

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/fuelport/backend/internal/apperr"
)

// codeLength is the fixed length of generated numeric codes.
const codeLength = 8

// maxCodeAttempts bounds collision retries per record.
const maxCodeAttempts = 10

// Store is the persistence contract. *Repository is the production
// implementation.
type Store interface {
	ListMissing(ctx context.Context, target string) ([]uuid.UUID, error)
	CodeExists(ctx context.Context, target, code string) (bool, error)
	AssignCode(ctx context.Context, target string, id uuid.UUID, code string) (bool, error)
}

type Service struct {
	store        Store
	storeTimeout time.Duration
	// genCode is swappable in tests for deterministic codes.
	genCode func() (string, error)
}

func NewService(store Store, storeTimeout time.Duration) *Service {
	return &Service{store: store, storeTimeout: storeTimeout, genCode: randomNumericCode}
}

// Run scans the target collection and fills every missing code. Codes
// are generated fresh, never derived from the record's own primary key.
// Each record is written individually, so a crash mid-run leaves already
// coded records correct and the remainder for the next run. Returns the
// number of records updated; a second consecutive run returns 0.
func (s *Service) Run(ctx context.Context, target string) (int, error) {
	if !ValidTarget(target) {
		return 0, apperr.Validation("unknown backfill target %q", target)
	}

	listCtx, cancel := s.bound(ctx)
	ids, err := s.store.ListMissing(listCtx, target)
	cancel()
	if err != nil {
		return 0, apperr.Store("list records missing codes", err)
	}

	updated := 0
	for _, id := range ids {
		assigned, err := s.assignOne(ctx, target, id)
		if err != nil {
			// Partial progress stands; report what happened with the
			// count so far so the caller knows a rerun will finish up.
			return updated, err
		}
		if assigned {
			updated++
		}
	}
	return updated, nil
}

// assignOne generates a collision-checked code and writes it. A false
// return without error means the record gained a code since the scan.
func (s *Service) assignOne(ctx context.Context, target string, id uuid.UUID) (bool, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.genCode()
		if err != nil {
			return false, apperr.Store("generate code", err)
		}
		opCtx, cancel := s.bound(ctx)
		exists, err := s.store.CodeExists(opCtx, target, code)
		if err != nil {
			cancel()
			return false, apperr.Store("check code collision", err)
		}
		if exists {
			cancel()
			continue
		}
		assigned, err := s.store.AssignCode(opCtx, target, id, code)
		cancel()
		if errors.Is(err, ErrCodeTaken) {
			// Lost a uniqueness race after the existence check.
			continue
		}
		if err != nil {
			return false, apperr.Store("assign code", err)
		}
		return assigned, nil
	}
	return false, apperr.Store("assign code", errors.New("exhausted collision retries"))
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// randomNumericCode returns a fixed-length digit string. Leading zeros
// are allowed; the code is an opaque reference, not a number.
func randomNumericCode() (string, error) {
	digits := make([]byte, codeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
