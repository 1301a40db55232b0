// Package money defines all monetary arithmetic in one place. Amounts are stored
// as integer paise (INR minor units, 2 fractional digits); the API edge speaks
// decimal rupee strings.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const Currency = "INR"

// ParseRupees converts a decimal rupee string (e.g. "150", "99.50") to paise.
// Amounts with more than 2 fractional digits are rejected; sign is preserved so
// callers can apply their own positivity checks.
func ParseRupees(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	paise := d.Shift(2)
	if !paise.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than 2 decimal places", s)
	}
	return paise.IntPart(), nil
}

// FormatRupees renders paise as a rupee string with 2 decimal places.
func FormatRupees(paise int64) string {
	return decimal.NewFromInt(paise).Shift(-2).StringFixed(2)
}

// ApplyRate multiplies paise by a fractional rate and rounds to whole paise using
// round-half-even, so repeated commission splits don't drift.
func ApplyRate(paise int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(paise).Mul(rate).RoundBank(0).IntPart()
}
