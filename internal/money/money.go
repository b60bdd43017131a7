// Package money provides the monetary value types used throughout the ledger.
//
// Amounts and percentages arrive from UI forms as loosely typed strings or
// numbers. They are validated once, at construction, and every internal
// computation operates on these types rather than raw floats, so the
// cent-exact sum invariants hold by construction.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Hundred is the decimal constant 100, used for percentage math.
var Hundred = decimal.NewFromInt(100)

// Amount is a non-negative monetary value with at most two decimal places.
// The zero value is a valid zero amount.
type Amount struct {
	dec decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// ParseAmount validates and constructs an Amount from its string form.
// Negative values and sub-cent precision are rejected.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return AmountFromDecimal(d)
}

// AmountFromDecimal constructs an Amount from an exact decimal.
// The value must be non-negative and representable in whole cents.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("amount must not be negative, got %s", d)
	}
	if !d.Equal(d.Round(2)) {
		return Amount{}, fmt.Errorf("amount %s has sub-cent precision", d)
	}
	return Amount{dec: d.Round(2)}, nil
}

// AmountFromDecimalRounded constructs an Amount from a computed decimal,
// rounding half away from zero to the nearest cent. It is meant for the
// calculator's intermediate results, not for boundary input.
func AmountFromDecimalRounded(d decimal.Decimal) (Amount, error) {
	return AmountFromDecimal(d.Round(2))
}

// AmountFromCents constructs an Amount from a whole number of cents.
// Negative cents indicate a programming error and panic: money code must
// fail loudly rather than carry a silently wrong balance.
func AmountFromCents(cents int64) Amount {
	if cents < 0 {
		panic(fmt.Sprintf("money: negative cents %d", cents))
	}
	return Amount{dec: decimal.New(cents, -2)}
}

// MustParseAmount is ParseAmount that panics on invalid input.
// Intended for tests and constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{dec: a.dec.Add(b.dec)}
}

// Sub returns a − b. A negative result indicates a violated ledger
// invariant and panics.
func (a Amount) Sub(b Amount) Amount {
	d := a.dec.Sub(b.dec)
	if d.IsNegative() {
		panic(fmt.Sprintf("money: amount underflow: %s - %s", a.dec, b.dec))
	}
	return Amount{dec: d}
}

// Cmp compares two amounts: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int { return a.dec.Cmp(b.dec) }

// Equal reports whether two amounts are the same value.
func (a Amount) Equal(b Amount) bool { return a.dec.Equal(b.dec) }

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool { return a.dec.Cmp(b.dec) < 0 }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.dec.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.dec.IsPositive() }

// Cents returns the amount as a whole number of cents.
func (a Amount) Cents() int64 { return a.dec.Shift(2).IntPart() }

// Decimal returns the underlying exact decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.dec }

// String renders the amount with two decimal places, e.g. "10.01".
func (a Amount) String() string { return a.dec.StringFixed(2) }

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// SplitHalf divides the amount into two halves that sum back exactly.
// When the amount has an odd number of cents the extra cent goes to the
// first half. The convention is fixed; callers and tests rely on it.
func (a Amount) SplitHalf() (Amount, Amount) {
	cents := a.Cents()
	first := (cents + 1) / 2
	return AmountFromCents(first), AmountFromCents(cents - first)
}
