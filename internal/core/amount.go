// Package core provides the ledger domain model.
//
// This file contains parsing of user-entered amount strings into cents.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(1<<63 - 1)

// ParseAmountToCents converts a decimal amount string to cents.
//
// The input must be a plain non-negative decimal; the direction of a
// transaction is carried by Kind, never by the sign of the amount. Digits
// beyond the second decimal place are rounded half-up. Returns
// ErrInvalidAmount for empty input, non-numeric input, or negative values.
//
// Examples:
//
//	ParseAmountToCents("12.50") -> 1250, nil
//	ParseAmountToCents("0")     -> 0, nil
//	ParseAmountToCents("-3")    -> 0, ErrInvalidAmount
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.Cmp(maxCents) > 0 {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}
