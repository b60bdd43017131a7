package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

// BalanceSummary is one party's aggregated position, recomputed on demand
// from open splits and the settlement log. It is never persisted.
type BalanceSummary struct {
	// UserID is the party the summary belongs to.
	UserID string

	// AmountOwed is what this party still owes the other.
	AmountOwed money.Amount

	// AmountOwedToThem is what the other party still owes this one.
	AmountOwedToThem money.Amount

	// NetBalance is AmountOwedToThem − AmountOwed. Positive means this
	// party is owed money. Signed, so it is a raw decimal rather than an
	// Amount. For a two-party household the two net balances are exact
	// negatives of each other.
	NetBalance decimal.Decimal
}

// SettlementTrendBucket is one calendar month of settlement activity.
type SettlementTrendBucket struct {
	// Month is the first instant of the bucket's calendar month, UTC.
	Month time.Time

	// Total is the summed settlement amount in the month.
	Total money.Amount

	// Count is the number of settlements in the month.
	Count int
}
