package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

// seedExpense shares an expense and returns the non-payer's split.
// Alice pays, so bob carries the gap.
func seedExpense(t *testing.T, ledger *LedgerService, id, amount string) *models.ExpenseSplit {
	t.Helper()
	rows, _, err := ledger.CreateSplitsForExpense(context.Background(), equalParams(sharedExpense(id, amount)))
	if err != nil {
		t.Fatalf("failed to seed expense %s: %v", id, err)
	}
	return rows[1]
}

func TestCreateSettlement(t *testing.T) {
	ctx := context.Background()

	t.Run("applies against listed expenses in order", func(t *testing.T) {
		store := newTestStore(t)
		ledger := NewLedgerService(store)
		svc := NewSettlementService(store)

		seedExpense(t, ledger, "e1", "150.00") // bob owes 75.00
		seedExpense(t, ledger, "e2", "60.00")  // bob owes 30.00

		s, err := svc.CreateSettlement(ctx, CreateSettlementParams{
			SpaceID:    "space-1",
			FromUserID: "bob",
			ToUserID:   "alice",
			Amount:     money.MustParseAmount("90.00"),
			ExpenseIDs: []string{"e1", "e2"},
			CreatedBy:  "bob",
		})
		if err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if s.AppliedAmount.String() != "90.00" || !s.GeneralCredit().IsZero() {
			t.Errorf("applied %s credit %s, want 90.00 applied with no credit",
				s.AppliedAmount, s.GeneralCredit())
		}

		first, err := store.ReadSplits(ctx, "e1")
		if err != nil {
			t.Fatalf("ReadSplits failed: %v", err)
		}
		if first[1].Status != models.SplitStatusSettled || first[1].SettledAt == nil {
			t.Errorf("e1 status = %s, want settled with timestamp", first[1].Status)
		}

		second, err := store.ReadSplits(ctx, "e2")
		if err != nil {
			t.Fatalf("ReadSplits failed: %v", err)
		}
		if second[1].AmountPaid.String() != "15.00" || second[1].Status != models.SplitStatusPartiallyPaid {
			t.Errorf("e2 = paid %s status %s, want 15.00 partially-paid",
				second[1].AmountPaid, second[1].Status)
		}
	})

	t.Run("overpayment is recorded as general credit", func(t *testing.T) {
		store := newTestStore(t)
		ledger := NewLedgerService(store)
		svc := NewSettlementService(store)

		seedExpense(t, ledger, "e1", "50.00") // bob owes 25.00

		s, err := svc.CreateSettlement(ctx, CreateSettlementParams{
			SpaceID:    "space-1",
			FromUserID: "bob",
			ToUserID:   "alice",
			Amount:     money.MustParseAmount("40.00"),
			ExpenseIDs: []string{"e1"},
			CreatedBy:  "bob",
		})
		if err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if s.AppliedAmount.String() != "25.00" {
			t.Errorf("applied = %s, want 25.00", s.AppliedAmount)
		}
		if s.GeneralCredit().String() != "15.00" {
			t.Errorf("general credit = %s, want 15.00", s.GeneralCredit())
		}

		rows, err := store.ReadSplits(ctx, "e1")
		if err != nil {
			t.Fatalf("ReadSplits failed: %v", err)
		}
		if rows[1].Status != models.SplitStatusSettled {
			t.Errorf("status = %s, want settled", rows[1].Status)
		}
	})

	t.Run("general settlement touches no split", func(t *testing.T) {
		store := newTestStore(t)
		ledger := NewLedgerService(store)
		svc := NewSettlementService(store)

		before := seedExpense(t, ledger, "e1", "50.00")

		s, err := svc.CreateSettlement(ctx, CreateSettlementParams{
			SpaceID:    "space-1",
			FromUserID: "bob",
			ToUserID:   "alice",
			Amount:     money.MustParseAmount("20.00"),
			CreatedBy:  "bob",
		})
		if err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if !s.AppliedAmount.IsZero() || s.GeneralCredit().String() != "20.00" {
			t.Errorf("applied %s credit %s, want the full amount as credit",
				s.AppliedAmount, s.GeneralCredit())
		}
		if s.SettlementDate.IsZero() {
			t.Error("a zero settlement date must default to now")
		}

		after, err := store.ReadSplit(ctx, before.ID)
		if err != nil {
			t.Fatalf("ReadSplit failed: %v", err)
		}
		if !after.AmountPaid.Equal(before.AmountPaid) {
			t.Errorf("split paid changed: %s -> %s", before.AmountPaid, after.AmountPaid)
		}
	})

	t.Run("skips expenses without a split for the payer", func(t *testing.T) {
		store := newTestStore(t)
		ledger := NewLedgerService(store)
		svc := NewSettlementService(store)

		seedExpense(t, ledger, "e1", "50.00") // bob owes 25.00

		s, err := svc.CreateSettlement(ctx, CreateSettlementParams{
			SpaceID:    "space-1",
			FromUserID: "bob",
			ToUserID:   "alice",
			Amount:     money.MustParseAmount("25.00"),
			ExpenseIDs: []string{"does-not-exist", "e1"},
			CreatedBy:  "bob",
		})
		if err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if s.AppliedAmount.String() != "25.00" {
			t.Errorf("applied = %s, want the whole amount on e1", s.AppliedAmount)
		}
	})

	t.Run("rejects invalid payments", func(t *testing.T) {
		svc := NewSettlementService(newTestStore(t))

		_, err := svc.CreateSettlement(ctx, CreateSettlementParams{
			SpaceID: "space-1", FromUserID: "bob", ToUserID: "alice", Amount: money.Zero,
		})
		if !errors.Is(err, ErrNonPositiveSettlement) {
			t.Errorf("error = %v, want ErrNonPositiveSettlement", err)
		}

		_, err = svc.CreateSettlement(ctx, CreateSettlementParams{
			SpaceID: "space-1", FromUserID: "bob", ToUserID: "bob",
			Amount: money.MustParseAmount("10.00"),
		})
		if !errors.Is(err, ErrSelfSettlement) {
			t.Errorf("error = %v, want ErrSelfSettlement", err)
		}
	})
}

func TestListSettlements(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewSettlementService(store)

	dates := []time.Time{
		time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		if _, err := svc.CreateSettlement(ctx, CreateSettlementParams{
			SpaceID:        "space-1",
			FromUserID:     "bob",
			ToUserID:       "alice",
			Amount:         money.MustParseAmount("10.00"),
			SettlementDate: d,
			CreatedBy:      "bob",
		}); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
	}

	list, err := svc.ListSettlements(ctx, "space-1", 1)
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(list) != 1 || !list[0].SettlementDate.Equal(dates[1]) {
		t.Errorf("got %d settlements, newest = %v, want the august one", len(list), list[0].SettlementDate)
	}

	if _, err := svc.ListSettlements(ctx, "empty-space", 0); err != nil {
		t.Errorf("empty space must not error: %v", err)
	}
}
