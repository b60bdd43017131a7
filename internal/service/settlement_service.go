package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VetSecItPro/rowan-ledger/internal/metrics"
	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
	"github.com/VetSecItPro/rowan-ledger/internal/storage"
)

var (
	ErrNonPositiveSettlement = errors.New("settlement amount must be positive")
	ErrSelfSettlement        = errors.New("cannot settle with yourself")
)

// SettlementService turns a payment event into split mutations plus one
// immutable settlement record.
type SettlementService struct {
	store storage.Store
	now   func() time.Time
}

// NewSettlementService creates a SettlementService over the given store.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store, now: time.Now}
}

// CreateSettlementParams describes one payment between the two parties.
type CreateSettlementParams struct {
	SpaceID    string
	FromUserID string
	ToUserID   string
	Amount     money.Amount

	// SettlementDate defaults to now when zero.
	SettlementDate time.Time

	// ExpenseIDs lists the expenses to credit, in order. Empty records a
	// general settlement that touches no split.
	ExpenseIDs []string

	PaymentMethod   string
	ReferenceNumber string
	Note            string
	CreatedBy       string
}

// CreateSettlement applies the amount against the listed splits' outstanding
// gaps in the order supplied, then records the settlement. Whatever exceeds
// the combined gap is still recorded as a general credit between the
// parties; the balance aggregator reconciles it from the settlement log.
func (svc *SettlementService) CreateSettlement(ctx context.Context, p CreateSettlementParams) (*models.Settlement, error) {
	if !p.Amount.IsPositive() {
		return nil, ErrNonPositiveSettlement
	}
	if p.FromUserID == p.ToUserID {
		return nil, ErrSelfSettlement
	}
	if p.SpaceID == "" || p.FromUserID == "" || p.ToUserID == "" {
		return nil, fmt.Errorf("space and both parties are required")
	}

	remaining := p.Amount
	applied := money.Zero
	var mutated []*models.ExpenseSplit

	for _, expenseID := range p.ExpenseIDs {
		if remaining.IsZero() {
			break
		}
		rows, err := svc.store.ReadSplits(ctx, expenseID)
		if err != nil {
			return nil, fmt.Errorf("failed to read splits for expense %s: %w", expenseID, err)
		}
		row := splitForUser(rows, p.FromUserID)
		if row == nil {
			slog.Warn("settlement references expense without a split for the payer",
				"expense_id", expenseID, "from_user_id", p.FromUserID)
			continue
		}

		pay := money.Min(remaining, row.Gap())
		if pay.IsZero() {
			continue
		}
		row.AmountPaid = row.AmountPaid.Add(pay)
		row.Status = models.DeriveStatus(row.AmountOwed, row.AmountPaid)
		if row.Status == models.SplitStatusSettled && row.SettledAt == nil {
			ts := svc.now().UTC()
			row.SettledAt = &ts
		}
		mutated = append(mutated, row)
		remaining = remaining.Sub(pay)
		applied = applied.Add(pay)
	}

	if len(mutated) > 0 {
		if err := svc.store.WriteSplits(ctx, mutated); err != nil {
			return nil, fmt.Errorf("failed to write split payments: %w", err)
		}
	}

	date := p.SettlementDate
	if date.IsZero() {
		date = svc.now()
	}
	settlement := &models.Settlement{
		SpaceID:         p.SpaceID,
		FromUserID:      p.FromUserID,
		ToUserID:        p.ToUserID,
		Amount:          p.Amount,
		AppliedAmount:   applied,
		SettlementDate:  date,
		ExpenseIDs:      p.ExpenseIDs,
		PaymentMethod:   p.PaymentMethod,
		ReferenceNumber: p.ReferenceNumber,
		Note:            p.Note,
		CreatedBy:       p.CreatedBy,
	}
	if err := svc.store.WriteSettlement(ctx, settlement); err != nil {
		return nil, fmt.Errorf("failed to write settlement: %w", err)
	}
	metrics.SettlementsCreated.Inc()

	slog.Info("settlement recorded",
		"settlement_id", settlement.ID,
		"from_user_id", p.FromUserID,
		"to_user_id", p.ToUserID,
		"amount", p.Amount.String(),
		"applied", applied.String(),
		"general_credit", settlement.GeneralCredit().String(),
		"splits_touched", len(mutated),
	)
	return settlement, nil
}

// ListSettlements returns the household's settlement history, newest first.
func (svc *SettlementService) ListSettlements(ctx context.Context, spaceID string, limit int) ([]*models.Settlement, error) {
	return svc.store.ReadSettlements(ctx, spaceID, limit)
}

func splitForUser(rows []*models.ExpenseSplit, userID string) *models.ExpenseSplit {
	for _, row := range rows {
		if row.UserID == userID {
			return row
		}
	}
	return nil
}
