// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and formatting them for display. Amounts are kept as exact decimals;
// rounding to cents happens only in FormatAmount.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts must stay below MaxAmount and use at most maxAmountScale digits of
// exponent either way, so rendering an amount stays cheap.
const maxAmountScale = 12

var MaxAmount = decimal.New(1, maxAmountScale)

// AmountInRange reports whether d is small enough to store and display.
// The exponent is checked first since comparing a huge exponent rescales it.
func AmountInRange(d decimal.Decimal) bool {
	if exp := d.Exponent(); exp > maxAmountScale || exp < -maxAmountScale {
		return false
	}
	return d.Abs().LessThan(MaxAmount)
}

// ParseAmount converts a user-entered decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for invalid formats, non-positive values and
// amounts outside AmountInRange.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() || !AmountInRange(d) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// CoerceAmount is the permissive counterpart of ParseAmount used for stored
// records: anything that does not parse or is out of range contributes zero.
func CoerceAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil || !AmountInRange(d) {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount for display, e.g. "$45.00".
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
