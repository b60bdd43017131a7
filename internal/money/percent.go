package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a percentage value bounded to [0, 100].
type Percent struct {
	dec decimal.Decimal
}

// FiftyPercent is the percentage used by the equal strategy.
var FiftyPercent = Percent{dec: decimal.NewFromInt(50)}

// ParsePercent validates and constructs a Percent from its string form.
func ParsePercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	return PercentFromDecimal(d)
}

// PercentFromDecimal constructs a Percent, rejecting values outside [0, 100].
func PercentFromDecimal(d decimal.Decimal) (Percent, error) {
	if d.IsNegative() || d.Cmp(Hundred) > 0 {
		return Percent{}, fmt.Errorf("percentage %s out of range [0, 100]", d)
	}
	return Percent{dec: d}, nil
}

// MustParsePercent is ParsePercent that panics on invalid input.
// Intended for tests and constants.
func MustParsePercent(s string) Percent {
	p, err := ParsePercent(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PercentOf back-computes the percentage part represents of whole, rounded
// to two decimal places. Used for display of fixed splits; whole must be
// positive.
func PercentOf(part, whole Amount) (Percent, error) {
	if !whole.IsPositive() {
		return Percent{}, fmt.Errorf("cannot compute percentage of non-positive whole %s", whole)
	}
	return PercentFromDecimal(part.Decimal().Mul(Hundred).Div(whole.Decimal()).Round(2))
}

// Complement returns 100 − p, exactly.
func (p Percent) Complement() Percent {
	return Percent{dec: Hundred.Sub(p.dec)}
}

// Ratio returns p/100 as an exact decimal for proportional math.
func (p Percent) Ratio() decimal.Decimal { return p.dec.Div(Hundred) }

// Decimal returns the underlying decimal value.
func (p Percent) Decimal() decimal.Decimal { return p.dec }

// Equal reports whether two percentages are the same value.
func (p Percent) Equal(q Percent) bool { return p.dec.Equal(q.dec) }

// String renders the percentage without a sign, e.g. "60" or "33.33".
func (p Percent) String() string { return p.dec.String() }
