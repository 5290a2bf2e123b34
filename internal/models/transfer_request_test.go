package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{TransferStatusPending, TransferStatusApproved, true},
		{TransferStatusPending, TransferStatusRejected, true},
		{TransferStatusApproved, TransferStatusTransferred, true},

		// Settlement requires prior approval.
		{TransferStatusPending, TransferStatusTransferred, false},

		// Terminal states never move.
		{TransferStatusRejected, TransferStatusApproved, false},
		{TransferStatusRejected, TransferStatusPending, false},
		{TransferStatusTransferred, TransferStatusApproved, false},
		{TransferStatusTransferred, TransferStatusRejected, false},

		// No backwards or reflexive moves.
		{TransferStatusApproved, TransferStatusPending, false},
		{TransferStatusApproved, TransferStatusRejected, false},
		{TransferStatusPending, TransferStatusPending, false},

		{"", TransferStatusApproved, false},
		{TransferStatusPending, "done", false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
