package service

import (
	"context"
	"testing"
	"time"

	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

// Full-cycle balance coverage: share an expense, record a partial payment,
// settle with an overpayment, and check the projected balances and trends.
func TestBalanceService(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ledger := NewLedgerService(store)
	settlements := NewSettlementService(store)
	svc := NewBalanceService(store, 0)

	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seedExpense(t, ledger, "e1", "100.00") // bob owes 50.00
	bob, err := ledger.GetSplits(ctx, "e1")
	if err != nil {
		t.Fatalf("GetSplits failed: %v", err)
	}
	if _, err := ledger.RecordPayment(ctx, bob[1].ID, money.MustParseAmount("20.00")); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	t.Run("summary reflects the open gap", func(t *testing.T) {
		summary, err := svc.GetBalanceSummary(ctx, "space-1")
		if err != nil {
			t.Fatalf("GetBalanceSummary failed: %v", err)
		}
		if got := summary["bob"].AmountOwed.String(); got != "30.00" {
			t.Errorf("bob owes %s, want 30.00", got)
		}
		if got := summary["alice"].AmountOwedToThem.String(); got != "30.00" {
			t.Errorf("alice is owed %s, want 30.00", got)
		}
		if summary["bob"].NetBalance.Add(summary["alice"].NetBalance).Sign() != 0 {
			t.Error("net balances must be anti-symmetric")
		}
	})

	// Bob settles with 40.00: 30.00 closes the gap, 10.00 becomes a credit
	// the aggregator must count exactly once.
	if _, err := settlements.CreateSettlement(ctx, CreateSettlementParams{
		SpaceID:        "space-1",
		FromUserID:     "bob",
		ToUserID:       "alice",
		Amount:         money.MustParseAmount("40.00"),
		SettlementDate: now,
		ExpenseIDs:     []string{"e1"},
		CreatedBy:      "bob",
	}); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	t.Run("overpayment flips the direction", func(t *testing.T) {
		summary, err := svc.GetBalanceSummary(ctx, "space-1")
		if err != nil {
			t.Fatalf("GetBalanceSummary failed: %v", err)
		}
		if got := summary["bob"].AmountOwedToThem.String(); got != "10.00" {
			t.Errorf("bob is owed %s, want the 10.00 credit", got)
		}
		if got := summary["alice"].AmountOwed.String(); got != "10.00" {
			t.Errorf("alice owes %s, want 10.00", got)
		}
	})

	t.Run("trends bucket by calendar month", func(t *testing.T) {
		trends, err := svc.GetSettlementTrends(ctx, "space-1", 0)
		if err != nil {
			t.Fatalf("GetSettlementTrends failed: %v", err)
		}
		if len(trends) != 1 {
			t.Fatalf("got %d buckets, want 1", len(trends))
		}
		if trends[0].Total.String() != "40.00" || trends[0].Count != 1 {
			t.Errorf("bucket = %s x%d, want 40.00 x1", trends[0].Total, trends[0].Count)
		}
		if trends[0].Month.Month() != time.August || trends[0].Month.Year() != 2026 {
			t.Errorf("bucket month = %v, want 2026-08", trends[0].Month)
		}
	})
}
