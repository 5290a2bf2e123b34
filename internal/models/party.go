package models

import (
	"time"

	"github.com/google/uuid"
)

// Party is a company or service provider whose earned funds are tracked.
// The id is the stable identifier; email is mutable contact data only
// (there is a unique index on it for login-style lookups, but nothing
// else may key off it).
type Party struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Phone        string    `json:"phone,omitempty"`
	WalletNumber *string   `json:"wallet_number,omitempty"` // display-only short code, nil until backfilled
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
