package calculator

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

// direction identifies a debt from one party to another.
type direction struct {
	from, to string
}

// ProjectBalances computes per-party balance summaries from the current
// split rows plus the settlement log.
//
// Algorithm:
//   - For each expense: the non-payer's outstanding gap is owed to the payer.
//   - Each settlement's general credit (the portion not applied to split
//     gaps when it was recorded) reduces what the sender owes the receiver;
//     the applied portion is already reflected in amount_paid and is not
//     counted again.
//   - Opposite directions are netted, so net_balance[A] == −net_balance[B]
//     for a two-party household.
func ProjectBalances(splits []*models.ExpenseSplit, settlements []*models.Settlement) (map[string]models.BalanceSummary, error) {
	owed := make(map[direction]decimal.Decimal)

	byExpense := make(map[string][]*models.ExpenseSplit)
	for _, s := range splits {
		byExpense[s.ExpenseID] = append(byExpense[s.ExpenseID], s)
	}

	for expenseID, rows := range byExpense {
		var payer *models.ExpenseSplit
		for _, r := range rows {
			if r.IsPayer {
				payer = r
				break
			}
		}
		if payer == nil {
			return nil, fmt.Errorf("expense %s has no payer split", expenseID)
		}
		for _, r := range rows {
			if r.IsPayer {
				continue
			}
			gap := r.Gap()
			if gap.IsZero() {
				continue
			}
			d := direction{from: r.UserID, to: payer.UserID}
			owed[d] = owed[d].Add(gap.Decimal())
		}
	}

	for _, s := range settlements {
		credit := s.GeneralCredit()
		if credit.IsZero() {
			continue
		}
		d := direction{from: s.FromUserID, to: s.ToUserID}
		owed[d] = owed[d].Sub(credit.Decimal())
	}

	summaries := make(map[string]*models.BalanceSummary)
	ensure := func(userID string) *models.BalanceSummary {
		if s, ok := summaries[userID]; ok {
			return s
		}
		s := &models.BalanceSummary{UserID: userID}
		summaries[userID] = s
		return s
	}

	done := make(map[direction]bool)
	for d := range owed {
		rev := direction{from: d.to, to: d.from}
		if done[d] || done[rev] {
			continue
		}
		done[d] = true
		done[rev] = true

		net := owed[d].Sub(owed[rev])
		if net.Sign() < 0 {
			d = rev
			net = net.Neg()
		}
		debtor := ensure(d.from)
		creditor := ensure(d.to)
		if net.Sign() == 0 {
			continue
		}
		amt, err := money.AmountFromDecimal(net)
		if err != nil {
			return nil, fmt.Errorf("net debt %s -> %s not cent-representable: %w", d.from, d.to, err)
		}
		debtor.AmountOwed = debtor.AmountOwed.Add(amt)
		creditor.AmountOwedToThem = creditor.AmountOwedToThem.Add(amt)
	}

	out := make(map[string]models.BalanceSummary, len(summaries))
	for userID, s := range summaries {
		s.NetBalance = s.AmountOwedToThem.Decimal().Sub(s.AmountOwed.Decimal())
		out[userID] = *s
	}
	return out, nil
}

// SettlementTrends groups settlement amounts by calendar month of the
// settlement date, newest first, covering the most recent months ending at
// now's month. Months with no settlements produce no bucket.
func SettlementTrends(settlements []*models.Settlement, months int, now time.Time) []models.SettlementTrendBucket {
	if months <= 0 {
		return nil
	}

	nowIdx := monthIndex(now.UTC())
	buckets := make(map[time.Time]*models.SettlementTrendBucket)
	for _, s := range settlements {
		date := s.SettlementDate.UTC()
		diff := nowIdx - monthIndex(date)
		if diff < 0 || diff >= months {
			continue
		}
		month := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[month]
		if !ok {
			b = &models.SettlementTrendBucket{Month: month}
			buckets[month] = b
		}
		b.Total = b.Total.Add(s.Amount)
		b.Count++
	}

	out := make([]models.SettlementTrendBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.After(out[j].Month) })
	return out
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
