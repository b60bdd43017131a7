// Package service implements the ledger's inbound operations: split
// lifecycle, settlement recording, and balance aggregation. Services are
// thin orchestration over a storage.Store; all math lives in calculator.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VetSecItPro/rowan-ledger/internal/calculator"
	"github.com/VetSecItPro/rowan-ledger/internal/metrics"
	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
	"github.com/VetSecItPro/rowan-ledger/internal/storage"
)

// Validation errors, caller-correctable.
var (
	ErrSameParties   = errors.New("the two parties must differ")
	ErrPayerNotParty = errors.New("payer must be one of the two parties")
)

// State errors: the request is well-formed but conflicts with the ledger's
// current state. Rejected, never silently clamped.
var (
	ErrNonPositivePayment = errors.New("payment amount must be positive")
	ErrExcessPayment      = errors.New("payment exceeds the outstanding amount owed")
	ErrOwedBelowPaid      = errors.New("new amount owed is below the amount already paid")
)

// LedgerService owns the ExpenseSplit rows and their status state machine
// (pending → partially-paid → settled). Status never regresses except
// through recalculation of the owed amount.
type LedgerService struct {
	store storage.Store
	now   func() time.Time
}

// NewLedgerService creates a LedgerService over the given store.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store, now: time.Now}
}

// CreateSplitsParams describes one expense's split configuration. Strategy
// inputs (percentage, fixed amount) always refer to UserIDs[0].
type CreateSplitsParams struct {
	Expense     models.Expense
	UserIDs     [2]string
	PayerUserID string
	Strategy    models.SplitStrategy

	// FirstPercentage is required for StrategyPercentage.
	FirstPercentage *money.Percent

	// FirstAmount is required for StrategyFixed.
	FirstAmount *money.Amount
}

// CreateSplitsForExpense computes and persists the two split rows of a
// shared expense. Called both on first share and whenever the split inputs
// change; recalculation preserves any amount already paid and keeps row IDs
// stable. Switching the expense away from shared ownership removes its
// splits instead.
//
// The returned calculator result reports whether the income strategy fell
// back to an equal split.
func (svc *LedgerService) CreateSplitsForExpense(ctx context.Context, p CreateSplitsParams) ([]*models.ExpenseSplit, *calculator.Result, error) {
	if p.UserIDs[0] == p.UserIDs[1] {
		return nil, nil, ErrSameParties
	}
	if p.PayerUserID != p.UserIDs[0] && p.PayerUserID != p.UserIDs[1] {
		return nil, nil, ErrPayerNotParty
	}

	if p.Expense.Ownership != models.OwnershipShared {
		if err := svc.store.DeleteSplits(ctx, p.Expense.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to remove splits: %w", err)
		}
		slog.Info("splits removed, expense no longer shared",
			"expense_id", p.Expense.ID, "ownership", p.Expense.Ownership)
		return nil, nil, nil
	}

	inputs := calculator.Inputs{
		FirstPercentage: p.FirstPercentage,
		FirstAmount:     p.FirstAmount,
	}
	if p.Strategy == models.StrategyIncome {
		if err := svc.loadIncomes(ctx, p, &inputs); err != nil {
			return nil, nil, err
		}
	}

	res, err := calculator.ComputeSplit(p.Strategy, p.Expense.Amount, inputs)
	if err != nil {
		return nil, nil, err
	}

	existing, err := svc.store.ReadSplits(ctx, p.Expense.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read existing splits: %w", err)
	}
	existingByUser := make(map[string]*models.ExpenseSplit, len(existing))
	for _, row := range existing {
		existingByUser[row.UserID] = row
	}

	rows := make([]*models.ExpenseSplit, 2)
	for i, userID := range p.UserIDs {
		owed := res.AmountOwed[i]
		row := &models.ExpenseSplit{
			SpaceID:    p.Expense.SpaceID,
			ExpenseID:  p.Expense.ID,
			UserID:     userID,
			AmountOwed: owed,
			IsPayer:    userID == p.PayerUserID,
		}
		if prev, ok := existingByUser[userID]; ok {
			if owed.LessThan(prev.AmountPaid) {
				return nil, nil, fmt.Errorf("%w: owed %s, paid %s (user %s)",
					ErrOwedBelowPaid, owed, prev.AmountPaid, userID)
			}
			row.ID = prev.ID
			row.CreatedAt = prev.CreatedAt
			row.AmountPaid = prev.AmountPaid
			row.SettledAt = prev.SettledAt
		}
		if !res.PercentDisplayOnly {
			pct := res.Percentage[i]
			row.Percentage = &pct
		}
		svc.refreshStatus(row)
		rows[i] = row
	}

	if err := svc.store.WriteSplits(ctx, rows); err != nil {
		return nil, nil, fmt.Errorf("failed to write splits: %w", err)
	}
	if len(existing) > 0 {
		metrics.SplitsRecalculated.Inc()
	}

	slog.Info("splits written",
		"expense_id", p.Expense.ID,
		"strategy", p.Strategy,
		"first_owed", res.AmountOwed[0].String(),
		"second_owed", res.AmountOwed[1].String(),
		"equal_fallback", res.EqualFallback,
	)
	return rows, res, nil
}

// loadIncomes pulls the household incomes for the income strategy. A missing
// partnership record is not an error: the calculator reports the equal
// fallback instead.
func (svc *LedgerService) loadIncomes(ctx context.Context, p CreateSplitsParams, inputs *calculator.Inputs) error {
	partnership, err := svc.store.ReadPartnership(ctx, p.Expense.SpaceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("no partnership incomes declared, income split will fall back to equal",
				"space_id", p.Expense.SpaceID)
			return nil
		}
		return fmt.Errorf("failed to read partnership: %w", err)
	}
	if income, ok := partnership.IncomeFor(p.UserIDs[0]); ok {
		inputs.FirstIncome = &income
	}
	if income, ok := partnership.IncomeFor(p.UserIDs[1]); ok {
		inputs.SecondIncome = &income
	}
	return nil
}

// GetSplits returns the split rows of one expense.
func (svc *LedgerService) GetSplits(ctx context.Context, expenseID string) ([]*models.ExpenseSplit, error) {
	return svc.store.ReadSplits(ctx, expenseID)
}

// RecordPayment adds a partial repayment to a split. The payment must be
// positive and must not push amount_paid past amount_owed.
func (svc *LedgerService) RecordPayment(ctx context.Context, splitID string, amount money.Amount) (*models.ExpenseSplit, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositivePayment
	}

	row, err := svc.store.ReadSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}

	newPaid := row.AmountPaid.Add(amount)
	if newPaid.Cmp(row.AmountOwed) > 0 {
		return nil, fmt.Errorf("%w: paying %s against outstanding %s",
			ErrExcessPayment, amount, row.Gap())
	}
	row.AmountPaid = newPaid
	svc.refreshStatus(row)

	if err := svc.store.WriteSplits(ctx, []*models.ExpenseSplit{row}); err != nil {
		return nil, fmt.Errorf("failed to write split: %w", err)
	}
	metrics.PaymentsRecorded.Inc()

	slog.Info("payment recorded",
		"split_id", row.ID,
		"amount", amount.String(),
		"amount_paid", row.AmountPaid.String(),
		"status", row.Status,
	)
	return row, nil
}

// RecordFullSettlement marks a split fully repaid. Calling it on an already
// settled split is a no-op: the original settled_at is kept and nothing is
// double-paid.
func (svc *LedgerService) RecordFullSettlement(ctx context.Context, splitID string) (*models.ExpenseSplit, error) {
	row, err := svc.store.ReadSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if row.Status == models.SplitStatusSettled {
		return row, nil
	}

	row.AmountPaid = row.AmountOwed
	svc.refreshStatus(row)

	if err := svc.store.WriteSplits(ctx, []*models.ExpenseSplit{row}); err != nil {
		return nil, fmt.Errorf("failed to write split: %w", err)
	}
	metrics.PaymentsRecorded.Inc()

	slog.Info("split fully settled", "split_id", row.ID, "amount", row.AmountOwed.String())
	return row, nil
}

// Recalculate replaces a split's owed amount after its parent expense
// changed. Shrinking the owed amount below what was already paid is a state
// error, not a clamp.
func (svc *LedgerService) Recalculate(ctx context.Context, splitID string, newOwed money.Amount) (*models.ExpenseSplit, error) {
	row, err := svc.store.ReadSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if newOwed.LessThan(row.AmountPaid) {
		return nil, fmt.Errorf("%w: owed %s, paid %s", ErrOwedBelowPaid, newOwed, row.AmountPaid)
	}

	row.AmountOwed = newOwed
	svc.refreshStatus(row)

	if err := svc.store.WriteSplits(ctx, []*models.ExpenseSplit{row}); err != nil {
		return nil, fmt.Errorf("failed to write split: %w", err)
	}
	metrics.SplitsRecalculated.Inc()

	slog.Info("split recalculated",
		"split_id", row.ID,
		"amount_owed", row.AmountOwed.String(),
		"status", row.Status,
	)
	return row, nil
}

// refreshStatus re-derives the status fields from the amounts. settled_at is
// set on the transition into settled and cleared if a recalculation reopens
// the split.
func (svc *LedgerService) refreshStatus(row *models.ExpenseSplit) {
	row.Status = models.DeriveStatus(row.AmountOwed, row.AmountPaid)
	switch {
	case row.Status == models.SplitStatusSettled && row.SettledAt == nil:
		ts := svc.now().UTC()
		row.SettledAt = &ts
	case row.Status != models.SplitStatusSettled:
		row.SettledAt = nil
	}
}
