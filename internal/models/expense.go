package models

import "github.com/VetSecItPro/rowan-ledger/internal/money"

// Ownership says whose expense this is. Only shared expenses are split.
type Ownership string

const (
	OwnershipShared Ownership = "shared"
	OwnershipYours  Ownership = "yours"
	OwnershipTheirs Ownership = "theirs"
)

// Expense is the ledger's view of an expense record owned by the external
// expense tracker. Only the fields the splitting logic needs are carried.
type Expense struct {
	// ID is the expense's identifier in the external store.
	ID string

	// SpaceID is the household the expense belongs to.
	SpaceID string

	// Amount is the full expense amount, always positive.
	Amount money.Amount

	// Category is the expense category, carried through for reporting.
	Category string

	// Ownership determines whether the expense is split at all.
	Ownership Ownership
}
