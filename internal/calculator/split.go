// Package calculator implements the pure math of the ledger: split
// strategies and balance/trend projections. Nothing in this package touches
// storage or clocks; everything is deterministic on its inputs.
package calculator

import (
	"errors"
	"fmt"

	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

// Validation errors, caller-correctable.
var (
	ErrNonPositiveAmount       = errors.New("amount must be positive")
	ErrMissingPercentage       = errors.New("percentage strategy requires the first party's percentage")
	ErrMissingFixedAmount      = errors.New("fixed strategy requires the first party's amount")
	ErrFixedAmountExceedsTotal = errors.New("fixed amount exceeds the expense amount")
	ErrUnknownStrategy         = errors.New("unknown split strategy")
)

// Inputs carries the strategy-specific parameters for ComputeSplit. All
// fields refer to the first party; the second party's figures are always
// derived so the sum invariant holds by construction.
type Inputs struct {
	// FirstPercentage is the first party's share for StrategyPercentage.
	FirstPercentage *money.Percent

	// FirstAmount is the first party's share for StrategyFixed.
	FirstAmount *money.Amount

	// FirstIncome and SecondIncome are the declared monthly incomes for
	// StrategyIncome. Nil or non-positive incomes trigger the equal
	// fallback.
	FirstIncome  *money.Amount
	SecondIncome *money.Amount
}

// Result is the outcome of a split computation. Index 0 is the first party,
// index 1 the second.
type Result struct {
	Strategy   models.SplitStrategy
	AmountOwed [2]money.Amount
	Percentage [2]money.Percent

	// PercentDisplayOnly marks percentages that were back-computed from
	// amounts (fixed strategy) and are not an input of record.
	PercentDisplayOnly bool

	// EqualFallback is set when the income strategy could not run for lack
	// of usable incomes and the equal strategy was applied instead.
	EqualFallback bool
}

// ComputeSplit divides amount between the two parties according to the
// strategy. The two owed amounts always sum to amount exactly, cent-precise:
// the first party's share is rounded and the second party's is derived by
// subtraction, absorbing any rounding discrepancy.
func ComputeSplit(strategy models.SplitStrategy, amount money.Amount, in Inputs) (*Result, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	switch strategy {
	case models.StrategyEqual:
		return equalSplit(amount), nil

	case models.StrategyPercentage:
		if in.FirstPercentage == nil {
			return nil, ErrMissingPercentage
		}
		return percentageSplit(amount, *in.FirstPercentage), nil

	case models.StrategyFixed:
		if in.FirstAmount == nil {
			return nil, ErrMissingFixedAmount
		}
		return fixedSplit(amount, *in.FirstAmount)

	case models.StrategyIncome:
		return incomeSplit(amount, in.FirstIncome, in.SecondIncome), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// equalSplit halves the amount; an odd cent goes to the first party.
func equalSplit(amount money.Amount) *Result {
	first, second := amount.SplitHalf()
	return &Result{
		Strategy:   models.StrategyEqual,
		AmountOwed: [2]money.Amount{first, second},
		Percentage: [2]money.Percent{money.FiftyPercent, money.FiftyPercent},
	}
}

// percentageSplit rounds the first party's share to the cent and derives the
// second party's by subtraction, so the at-most-one-cent discrepancy from two
// independent roundings lands on the second party.
func percentageSplit(amount money.Amount, first money.Percent) *Result {
	firstOwed, err := money.AmountFromDecimalRounded(
		amount.Decimal().Mul(first.Decimal()).Div(money.Hundred))
	if err != nil {
		// Unreachable: amount ≥ 0 and percentage in [0, 100].
		panic(fmt.Sprintf("calculator: percentage share not representable: %v", err))
	}
	return &Result{
		Strategy:   models.StrategyPercentage,
		AmountOwed: [2]money.Amount{firstOwed, amount.Sub(firstOwed)},
		Percentage: [2]money.Percent{first, first.Complement()},
	}
}

func fixedSplit(amount, first money.Amount) (*Result, error) {
	if first.Cmp(amount) > 0 {
		return nil, fmt.Errorf("%w: %s > %s", ErrFixedAmountExceedsTotal, first, amount)
	}
	second := amount.Sub(first)

	// Percentages for fixed splits exist for display only.
	firstPct, err := money.PercentOf(first, amount)
	if err != nil {
		return nil, err
	}
	return &Result{
		Strategy:           models.StrategyFixed,
		AmountOwed:         [2]money.Amount{first, second},
		Percentage:         [2]money.Percent{firstPct, firstPct.Complement()},
		PercentDisplayOnly: true,
	}, nil
}

// incomeSplit divides proportionally to the two incomes. When either income
// is missing or not positive it degenerates to the equal split and reports
// the fallback, never silently.
func incomeSplit(amount money.Amount, firstIncome, secondIncome *money.Amount) *Result {
	if firstIncome == nil || secondIncome == nil ||
		!firstIncome.IsPositive() || !secondIncome.IsPositive() {
		res := equalSplit(amount)
		res.Strategy = models.StrategyIncome
		res.EqualFallback = true
		return res
	}

	combined := firstIncome.Add(*secondIncome)
	ratio := firstIncome.Decimal().Div(combined.Decimal())

	firstOwed, err := money.AmountFromDecimalRounded(amount.Decimal().Mul(ratio))
	if err != nil {
		panic(fmt.Sprintf("calculator: income share not representable: %v", err))
	}
	// A large first income can round a hair above the total; the share is
	// capped so the subtraction below stays in range.
	firstOwed = money.Min(firstOwed, amount)

	firstPct, pctErr := money.PercentFromDecimal(ratio.Mul(money.Hundred).Round(2))
	if pctErr != nil {
		panic(fmt.Sprintf("calculator: income ratio out of range: %v", pctErr))
	}
	return &Result{
		Strategy:   models.StrategyIncome,
		AmountOwed: [2]money.Amount{firstOwed, amount.Sub(firstOwed)},
		Percentage: [2]money.Percent{firstPct, firstPct.Complement()},
	}
}
