package models

import "github.com/VetSecItPro/rowan-ledger/internal/money"

// PartnershipBalance holds the per-household figures that feed the
// income-based split strategy. Incomes are optional: a missing or
// non-positive income makes the income strategy fall back to equal.
type PartnershipBalance struct {
	// SpaceID is the household this record belongs to.
	SpaceID string

	// MonthlyIncomes maps user ID to declared monthly income. Absence
	// means the party has not declared an income.
	MonthlyIncomes map[string]money.Amount
}

// IncomeFor returns the declared positive monthly income for the user, or
// false when it is missing or not positive.
func (p *PartnershipBalance) IncomeFor(userID string) (money.Amount, bool) {
	if p == nil {
		return money.Zero, false
	}
	income, ok := p.MonthlyIncomes[userID]
	if !ok || !income.IsPositive() {
		return money.Zero, false
	}
	return income, true
}
