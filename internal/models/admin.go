package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin roles.
const (
	AdminRoleAdmin   = "admin"
	AdminRoleFinance = "finance"
)

// Admin is a dashboard operator. Approve/Reject/Settle record the acting
// admin's ID on the transfer request.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
