// Package storage defines the ledger's outbound boundary: the durable store
// the splits and settlements live in, and the change-notification stream it
// emits. The store is external to the ledger; this package owns only the
// contracts, plus a SQLite reference implementation in the sqlite
// subpackage.
package storage

import (
	"context"
	"errors"

	"github.com/VetSecItPro/rowan-ledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the durable record store the ledger reads from and writes to.
// Implementations must persist monetary values exactly (decimal strings or
// integer cents), never as binary floating point.
type Store interface {
	// ReadSplit retrieves a single split row by ID.
	ReadSplit(ctx context.Context, splitID string) (*models.ExpenseSplit, error)

	// ReadSplits retrieves the split rows of one expense.
	ReadSplits(ctx context.Context, expenseID string) ([]*models.ExpenseSplit, error)

	// ReadSplitsBySpace retrieves every split row in a household.
	ReadSplitsBySpace(ctx context.Context, spaceID string) ([]*models.ExpenseSplit, error)

	// WriteSplits upserts split rows, keyed by (expense_id, user_id).
	// IDs and creation timestamps are assigned to new rows.
	WriteSplits(ctx context.Context, rows []*models.ExpenseSplit) error

	// DeleteSplits removes the split rows of one expense, used when an
	// expense stops being shared.
	DeleteSplits(ctx context.Context, expenseID string) error

	// ReadSettlements retrieves settlements for a household, newest first.
	// A non-positive limit returns all of them.
	ReadSettlements(ctx context.Context, spaceID string, limit int) ([]*models.Settlement, error)

	// WriteSettlement appends an immutable settlement record.
	WriteSettlement(ctx context.Context, settlement *models.Settlement) error

	// ReadPartnership retrieves the household's partnership record.
	ReadPartnership(ctx context.Context, spaceID string) (*models.PartnershipBalance, error)

	// WritePartnership upserts the household's partnership record.
	WritePartnership(ctx context.Context, partnership *models.PartnershipBalance) error

	// Close releases any resources held by the store.
	Close() error
}

// ChangeKind says which record family a change notification refers to.
type ChangeKind string

const (
	ChangeSplits      ChangeKind = "splits"
	ChangeSettlements ChangeKind = "settlements"
)

// ChangeEvent is one notification from the external store's change stream.
// Delivery is at-least-once; consumers refresh wholesale rather than merge.
type ChangeEvent struct {
	SpaceID  string
	Kind     ChangeKind
	EntityID string
}

// Notifier is the change-notification subscription, keyed by household.
type Notifier interface {
	// Subscribe returns a channel of change events for the space. The
	// channel is closed when ctx is done.
	Subscribe(ctx context.Context, spaceID string) (<-chan ChangeEvent, error)
}
