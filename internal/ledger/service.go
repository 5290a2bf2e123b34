package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fuelport/backend/internal/models"
)

// Reader is the read-only view of ledger facts consumed by the balance
// calculator and the dashboard.
type Reader interface {
	OrdersForParty(ctx context.Context, partyID uuid.UUID, until *time.Time) ([]models.OrderFact, error)
	CommissionsForParty(ctx context.Context, partyID uuid.UUID, until *time.Time) ([]models.CommissionFact, error)
	TransfersForParty(ctx context.Context, partyID uuid.UUID) ([]models.TransferRequest, error)
}

var _ Reader = (*Repository)(nil)
