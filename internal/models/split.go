package models

import (
	"time"

	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

// SplitStrategy selects how a shared expense is divided between the two
// parties.
type SplitStrategy string

const (
	// StrategyEqual divides the amount in half, odd cent to the first party.
	StrategyEqual SplitStrategy = "equal"
	// StrategyPercentage divides by a caller-supplied percentage for the
	// first party.
	StrategyPercentage SplitStrategy = "percentage"
	// StrategyFixed takes the first party's amount directly and derives the
	// second party's by subtraction.
	StrategyFixed SplitStrategy = "fixed"
	// StrategyIncome divides proportionally to each party's monthly income,
	// falling back to equal when incomes are missing.
	StrategyIncome SplitStrategy = "income"
)

// SplitStatus is the repayment state of one split row.
type SplitStatus string

const (
	SplitStatusPending       SplitStatus = "pending"
	SplitStatusPartiallyPaid SplitStatus = "partially-paid"
	SplitStatusSettled       SplitStatus = "settled"
)

// DeriveStatus computes the status implied by the paid/owed amounts.
// A zero-owed split counts as settled.
func DeriveStatus(owed, paid money.Amount) SplitStatus {
	switch {
	case paid.Cmp(owed) >= 0:
		return SplitStatusSettled
	case paid.IsPositive():
		return SplitStatusPartiallyPaid
	default:
		return SplitStatusPending
	}
}

// ExpenseSplit is one party's obligation for one shared expense.
// For every shared expense there are exactly two rows, one per party, whose
// AmountOwed values sum to the expense amount to the cent.
type ExpenseSplit struct {
	// ID is the unique identifier for the split row (UUID format).
	ID string

	// SpaceID is the household this split belongs to.
	SpaceID string

	// ExpenseID references the parent expense owned by the expense tracker.
	ExpenseID string

	// UserID is the party this obligation belongs to.
	UserID string

	// AmountOwed is this party's computed share of the expense.
	AmountOwed money.Amount

	// AmountPaid is how much of AmountOwed has been repaid so far.
	// Invariant: AmountPaid <= AmountOwed.
	AmountPaid money.Amount

	// Percentage is this party's share in percent. Nil for fixed splits,
	// where it is back-computed for display only.
	Percentage *money.Percent

	// IsPayer is true for the party who fronted the money. The payer's own
	// share is never a debt; the counterpart's gap is owed to the payer.
	IsPayer bool

	// Status is derived from AmountPaid vs AmountOwed via DeriveStatus.
	Status SplitStatus

	// SettledAt is set when the split reaches settled status.
	SettledAt *time.Time

	// CreatedAt is the Unix timestamp when the row was first written.
	CreatedAt int64
}

// Gap returns the outstanding amount on this split.
func (s *ExpenseSplit) Gap() money.Amount {
	if s.AmountPaid.Cmp(s.AmountOwed) >= 0 {
		return money.Zero
	}
	return s.AmountOwed.Sub(s.AmountPaid)
}

// Clone returns a deep copy of the split row.
func (s *ExpenseSplit) Clone() *ExpenseSplit {
	out := *s
	if s.Percentage != nil {
		p := *s.Percentage
		out.Percentage = &p
	}
	if s.SettledAt != nil {
		ts := *s.SettledAt
		out.SettledAt = &ts
	}
	return &out
}
