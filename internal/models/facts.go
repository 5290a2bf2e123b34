package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. Only completed orders contribute to a party's balance.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusDelivered = "delivered"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// OrderFact is a completed fuel order attributable to a party. Immutable
// ledger input; the balance calculator only ever reads these.
type OrderFact struct {
	ID            uuid.UUID       `json:"id"`
	PartyID       uuid.UUID       `json:"party_id"`
	ReferenceCode *string         `json:"reference_code,omitempty"` // short code, nil until backfilled
	Liters        decimal.Decimal `json:"liters"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// CommissionFact is a platform commission accrued against a party's order.
type CommissionFact struct {
	ID        uuid.UUID       `json:"id"`
	PartyID   uuid.UUID       `json:"party_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	AccruedAt time.Time       `json:"accrued_at"`
}
