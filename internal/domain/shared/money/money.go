package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("money: invalid amount")

var hundred = decimal.NewFromInt(100)

// Money keeps catalog prices as exact decimals. The catalog does not carry a
// currency, so none is modeled here.
type Money struct {
	decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{Decimal: decimal.Zero}

// New wraps a decimal value.
func New(value decimal.Decimal) Money {
	return Money{Decimal: value}
}

// FromInt builds Money from a whole amount.
func FromInt(amount int64) Money {
	return Money{Decimal: decimal.NewFromInt(amount)}
}

// FromFloat builds Money from a float as received from JSON collaborators.
func FromFloat(amount float64) Money {
	return Money{Decimal: decimal.NewFromFloat(amount)}
}

// Parse reads a decimal string such as "1250.50".
func Parse(raw string) (Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// Must parses and panics on failure; useful in tests and fixtures.
func Must(raw string) Money {
	m, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Decimal: m.Decimal.Sub(other.Decimal)}
}

// Multiply multiplies the amount by a whole factor (nights, days).
func (m Money) Multiply(times int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(times)))}
}

// LessPercent returns m * (1 - pct/100).
func (m Money) LessPercent(pct decimal.Decimal) Money {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return Money{Decimal: m.Decimal.Mul(factor)}
}

// ClampZero returns zero for negative amounts.
func (m Money) ClampZero() Money {
	if m.Decimal.IsNegative() {
		return Zero
	}
	return m
}

// Equal compares amounts ignoring scale ("900" equals "900.00").
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// Sum adds all values.
func Sum(values ...Money) Money {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
