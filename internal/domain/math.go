package domain

import (
	"github.com/shopspring/decimal"
)

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SafeDiv divides a by b, returning zero on division by zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// DecimalPtr returns a pointer to a copy of d.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// SumPtr adds two optional decimals. A nil operand counts as absent, not zero:
// nil + nil stays nil.
func SumPtr(a, b *decimal.Decimal) *decimal.Decimal {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return DecimalPtr(*b)
	case b == nil:
		return DecimalPtr(*a)
	default:
		return DecimalPtr(a.Add(*b))
	}
}
