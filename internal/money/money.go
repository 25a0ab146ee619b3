// Package money fixes the rounding and precision rules applied to monetary
// amounts. Balances and transaction amounts carry two fractional digits;
// any rate or fee computation that produces more is rounded half-up once,
// at the point the amount is produced.
package money

import "github.com/shopspring/decimal"

// Round2 rounds half-up to two decimal places. Amounts in this system are
// non-negative at the point of rounding, so decimal's round-half-away-from-
// zero behaves as half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// HasCents reports whether d has at most two fractional digits.
func HasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
