package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer request statuses. pending is the only initial state;
// rejected and transferred are terminal.
const (
	TransferStatusPending     = "pending"
	TransferStatusApproved    = "approved"
	TransferStatusRejected    = "rejected"
	TransferStatusTransferred = "transferred"
)

// validTransferTransitions encodes the full state machine. Settlement is
// reachable only through approved, so an audit trail always distinguishes
// "an admin authorized this" from "funds actually moved".
var validTransferTransitions = map[string][]string{
	TransferStatusPending:  {TransferStatusApproved, TransferStatusRejected},
	TransferStatusApproved: {TransferStatusTransferred},
}

// CanTransition reports whether a transfer request may move from to to.
func CanTransition(from, to string) bool {
	for _, s := range validTransferTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransferRequest is the audit record of a payout. Amount is fixed at
// creation; a request is never deleted, only moved forward through the
// state machine.
type TransferRequest struct {
	ID              uuid.UUID       `json:"id"`
	PartyID         uuid.UUID       `json:"party_id"`
	TransferNumber  string          `json:"transfer_number"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	ApprovedBy      *uuid.UUID      `json:"approved_by,omitempty"`
	RejectedBy      *uuid.UUID      `json:"rejected_by,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	SettledBy       *uuid.UUID      `json:"settled_by,omitempty"`
	ReceiptURL      *string         `json:"receipt_url,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	TransferredAt   *time.Time      `json:"transferred_at,omitempty"`
}
