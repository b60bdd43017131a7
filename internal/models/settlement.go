package models

import (
	"time"

	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

// Settlement represents a payment between the two parties to clear debts.
// Settlement rows are append-only: once written they are never mutated.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// SpaceID is the household this settlement belongs to.
	SpaceID string

	// FromUserID is the party who paid (debtor settling up).
	FromUserID string

	// ToUserID is the party who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount, always positive.
	Amount money.Amount

	// AppliedAmount is the portion of Amount that was absorbed by the
	// outstanding gaps of the splits in ExpenseIDs at recording time.
	// The remainder (Amount − AppliedAmount) is a general credit between
	// the parties; the balance aggregator counts it from the settlement
	// log so overpayments are never double counted.
	AppliedAmount money.Amount

	// SettlementDate is when the payment happened.
	SettlementDate time.Time

	// ExpenseIDs lists the expenses this payment was credited against, in
	// application order. Empty means a general settlement not tied to any
	// specific split.
	ExpenseIDs []string

	// PaymentMethod is an optional free-form method ("cash", "transfer").
	PaymentMethod string

	// ReferenceNumber is an optional external payment reference.
	ReferenceNumber string

	// Note is an optional description for the settlement.
	Note string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string
}

// GeneralCredit returns the portion of the settlement not applied to any
// specific split.
func (s *Settlement) GeneralCredit() money.Amount {
	return s.Amount.Sub(s.AppliedAmount)
}
