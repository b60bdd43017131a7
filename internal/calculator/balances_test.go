package calculator

import (
	"testing"
	"time"

	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

func split(expenseID, userID string, owed, paid string, isPayer bool) *models.ExpenseSplit {
	owedAmt := money.MustParseAmount(owed)
	paidAmt := money.MustParseAmount(paid)
	return &models.ExpenseSplit{
		ID:         expenseID + "-" + userID,
		SpaceID:    "space-1",
		ExpenseID:  expenseID,
		UserID:     userID,
		AmountOwed: owedAmt,
		AmountPaid: paidAmt,
		IsPayer:    isPayer,
		Status:     models.DeriveStatus(owedAmt, paidAmt),
	}
}

func settlement(from, to, amount, applied string, date time.Time) *models.Settlement {
	return &models.Settlement{
		ID:             "s-" + from + "-" + amount,
		SpaceID:        "space-1",
		FromUserID:     from,
		ToUserID:       to,
		Amount:         money.MustParseAmount(amount),
		AppliedAmount:  money.MustParseAmount(applied),
		SettlementDate: date,
	}
}

func TestProjectBalances(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		splits       []*models.ExpenseSplit
		settlements  []*models.Settlement
		validateFunc func(t *testing.T, got map[string]models.BalanceSummary)
	}{
		{
			name: "open split creates a directed debt",
			splits: []*models.ExpenseSplit{
				split("e1", "alice", "50.00", "50.00", true),
				split("e1", "bob", "50.00", "0.00", false),
			},
			validateFunc: func(t *testing.T, got map[string]models.BalanceSummary) {
				assertSummary(t, got, "bob", "50.00", "0.00")
				assertSummary(t, got, "alice", "0.00", "50.00")
			},
		},
		{
			name: "partial payment shrinks the gap",
			splits: []*models.ExpenseSplit{
				split("e1", "alice", "37.50", "37.50", true),
				split("e1", "bob", "37.50", "12.50", false),
			},
			validateFunc: func(t *testing.T, got map[string]models.BalanceSummary) {
				assertSummary(t, got, "bob", "25.00", "0.00")
			},
		},
		{
			name: "settled splits contribute nothing",
			splits: []*models.ExpenseSplit{
				split("e1", "alice", "10.00", "10.00", true),
				split("e1", "bob", "10.00", "10.00", false),
			},
			validateFunc: func(t *testing.T, got map[string]models.BalanceSummary) {
				for userID, s := range got {
					if !s.NetBalance.IsZero() {
						t.Errorf("net balance for %s = %s, want 0", userID, s.NetBalance)
					}
				}
			},
		},
		{
			name: "debts in both directions are netted",
			splits: []*models.ExpenseSplit{
				split("e1", "alice", "40.00", "40.00", true),
				split("e1", "bob", "40.00", "0.00", false),
				split("e2", "bob", "15.00", "15.00", true),
				split("e2", "alice", "15.00", "0.00", false),
			},
			validateFunc: func(t *testing.T, got map[string]models.BalanceSummary) {
				assertSummary(t, got, "bob", "25.00", "0.00")
				assertSummary(t, got, "alice", "0.00", "25.00")
			},
		},
		{
			name: "general settlement credits the sender",
			splits: []*models.ExpenseSplit{
				split("e1", "alice", "60.00", "60.00", true),
				split("e1", "bob", "60.00", "0.00", false),
			},
			settlements: []*models.Settlement{
				settlement("bob", "alice", "20.00", "0.00", now),
			},
			validateFunc: func(t *testing.T, got map[string]models.BalanceSummary) {
				assertSummary(t, got, "bob", "40.00", "0.00")
			},
		},
		{
			name: "applied settlement portion is not double counted",
			splits: []*models.ExpenseSplit{
				// 50 of the 70 settlement was applied to this split.
				split("e1", "alice", "75.00", "75.00", true),
				split("e1", "bob", "75.00", "50.00", false),
			},
			settlements: []*models.Settlement{
				settlement("bob", "alice", "70.00", "50.00", now),
			},
			validateFunc: func(t *testing.T, got map[string]models.BalanceSummary) {
				// Gap 25 minus the 20 of general credit.
				assertSummary(t, got, "bob", "5.00", "0.00")
			},
		},
		{
			name: "overpayment flips the direction",
			splits: []*models.ExpenseSplit{
				split("e1", "alice", "10.00", "10.00", true),
				split("e1", "bob", "10.00", "10.00", false),
			},
			settlements: []*models.Settlement{
				settlement("bob", "alice", "15.00", "10.00", now),
			},
			validateFunc: func(t *testing.T, got map[string]models.BalanceSummary) {
				assertSummary(t, got, "alice", "5.00", "0.00")
				assertSummary(t, got, "bob", "0.00", "5.00")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectBalances(tt.splits, tt.settlements)
			if err != nil {
				t.Fatalf("ProjectBalances failed: %v", err)
			}
			assertAntiSymmetry(t, got)
			tt.validateFunc(t, got)
		})
	}
}

func TestProjectBalances_MissingPayer(t *testing.T) {
	_, err := ProjectBalances([]*models.ExpenseSplit{
		split("e1", "bob", "10.00", "0.00", false),
	}, nil)
	if err == nil {
		t.Fatal("expected error for expense without payer split")
	}
}

func TestSettlementTrends(t *testing.T) {
	now := time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)
	july := time.Date(2026, time.July, 3, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	settlements := []*models.Settlement{
		settlement("bob", "alice", "50.00", "0.00", august.Add(24*time.Hour)),
		settlement("bob", "alice", "30.00", "0.00", august.Add(48*time.Hour)),
		settlement("alice", "bob", "20.00", "0.00", august.Add(72*time.Hour)),
		settlement("bob", "alice", "12.34", "0.00", july),
		// Outside the 6-month window, must be excluded.
		settlement("bob", "alice", "99.99", "0.00", now.AddDate(-1, 0, 0)),
	}

	buckets := SettlementTrends(settlements, 6, now)
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}

	if !buckets[0].Month.Equal(august) {
		t.Errorf("first bucket month = %v, want %v (newest first)", buckets[0].Month, august)
	}
	if buckets[0].Total.String() != "100.00" || buckets[0].Count != 3 {
		t.Errorf("august bucket = total %s count %d, want total 100.00 count 3",
			buckets[0].Total, buckets[0].Count)
	}
	if buckets[1].Total.String() != "12.34" || buckets[1].Count != 1 {
		t.Errorf("july bucket = total %s count %d, want total 12.34 count 1",
			buckets[1].Total, buckets[1].Count)
	}

	if got := SettlementTrends(settlements, 0, now); got != nil {
		t.Errorf("months=0 should produce no buckets, got %v", got)
	}
}

func assertSummary(t *testing.T, got map[string]models.BalanceSummary, userID, owed, owedToThem string) {
	t.Helper()
	s, ok := got[userID]
	if !ok {
		t.Fatalf("no summary for %s", userID)
	}
	if s.AmountOwed.String() != owed {
		t.Errorf("%s amount_owed = %s, want %s", userID, s.AmountOwed, owed)
	}
	if s.AmountOwedToThem.String() != owedToThem {
		t.Errorf("%s amount_owed_to_them = %s, want %s", userID, s.AmountOwedToThem, owedToThem)
	}
	wantNet := s.AmountOwedToThem.Decimal().Sub(s.AmountOwed.Decimal())
	if !s.NetBalance.Equal(wantNet) {
		t.Errorf("%s net_balance = %s, want %s", userID, s.NetBalance, wantNet)
	}
}

// assertAntiSymmetry checks net_balance[A] == -net_balance[B] for the
// two-party household.
func assertAntiSymmetry(t *testing.T, got map[string]models.BalanceSummary) {
	t.Helper()
	if len(got) != 2 {
		return
	}
	var users []string
	for userID := range got {
		users = append(users, userID)
	}
	a, b := got[users[0]], got[users[1]]
	if !a.NetBalance.Equal(b.NetBalance.Neg()) {
		t.Errorf("net balances not anti-symmetric: %s=%s, %s=%s",
			a.UserID, a.NetBalance, b.UserID, b.NetBalance)
	}
}
