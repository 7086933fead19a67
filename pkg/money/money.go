// Package money converts between decimal amounts used on the wire and the
// integer minor units (cents) stored in the database.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a decimal amount to cents, rounding half away from zero.
func FromDecimal(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// ToDecimal converts cents to a decimal amount for display.
func ToDecimal(cents int64) float64 {
	f, _ := decimal.New(cents, -2).Float64()
	return f
}

// Format renders cents with two decimal places, e.g. 12345 -> "123.45".
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Mul returns cents multiplied by an integer quantity.
func Mul(cents int64, qty int) int64 {
	return cents * int64(qty)
}
