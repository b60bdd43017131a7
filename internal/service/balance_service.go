package service

import (
	"context"
	"fmt"
	"time"

	"github.com/VetSecItPro/rowan-ledger/internal/calculator"
	"github.com/VetSecItPro/rowan-ledger/internal/config"
	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/storage"
)

// BalanceService computes balance summaries and settlement trends on
// demand. It performs no writes and keeps no cache, so it always reflects
// the latest ledger and settlement mutations and is safe to call
// concurrently with them.
type BalanceService struct {
	store       storage.Store
	trendMonths int
	now         func() time.Time
}

// NewBalanceService creates a BalanceService. trendMonths is the default
// trend window; non-positive values fall back to the configured default.
func NewBalanceService(store storage.Store, trendMonths int) *BalanceService {
	if trendMonths <= 0 {
		trendMonths = config.DefaultTrendMonths
	}
	return &BalanceService{store: store, trendMonths: trendMonths, now: time.Now}
}

// GetBalanceSummary projects the household's per-party balances from the
// open splits and the settlement log.
func (svc *BalanceService) GetBalanceSummary(ctx context.Context, spaceID string) (map[string]models.BalanceSummary, error) {
	splits, err := svc.store.ReadSplitsBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to read splits: %w", err)
	}
	settlements, err := svc.store.ReadSettlements(ctx, spaceID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read settlements: %w", err)
	}
	return calculator.ProjectBalances(splits, settlements)
}

// GetSettlementTrends buckets the household's settlements by calendar
// month, newest first. A non-positive months argument uses the service's
// default window.
func (svc *BalanceService) GetSettlementTrends(ctx context.Context, spaceID string, months int) ([]models.SettlementTrendBucket, error) {
	if months <= 0 {
		months = svc.trendMonths
	}
	settlements, err := svc.store.ReadSettlements(ctx, spaceID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read settlements: %w", err)
	}
	return calculator.SettlementTrends(settlements, months, svc.now()), nil
}
