// Package types provides common types used across Tally.
package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Amount represents a quantity of token units as a raw unsigned integer.
// All arithmetic is integer-only and checked — no floating point, no
// wrapping. The token's declared decimal count never scales Amount
// values; it exists purely for display (see TokenInfo).
type Amount uint64

// MaxSupply is the hard cap on total outstanding units (balances plus
// stakes), expressed in raw units.
const MaxSupply Amount = 100_000_000

// Arithmetic errors.
var (
	ErrAmountOverflow  = errors.New("types: amount overflow")
	ErrAmountUnderflow = errors.New("types: amount underflow")
)

// Add returns a + b, failing with ErrAmountOverflow instead of wrapping.
func (a Amount) Add(b Amount) (Amount, error) {
	if uint64(b) > math.MaxUint64-uint64(a) {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

// Sub returns a - b, failing with ErrAmountUnderflow if b exceeds a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrAmountUnderflow
	}
	return a - b, nil
}

// Covers reports whether a is at least b.
func (a Amount) Covers(b Amount) bool { return a >= b }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// Uint64 returns the raw unsigned integer value.
func (a Amount) Uint64() uint64 { return uint64(a) }

// Sum adds a series of amounts with overflow checking.
func Sum(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		t, err := total.Add(a)
		if err != nil {
			return 0, err
		}
		total = t
	}
	return total, nil
}

// String returns the raw unit count as a decimal string.
func (a Amount) String() string {
	return fmt.Sprintf("%d", uint64(a))
}

// Format renders the amount with a decimal point inserted at the given
// number of decimal places. Display-only: no operation ever scales by
// the decimal count.
//
//	Amount(1_500_000).Format(6) == "1.500000"
func (a Amount) Format(decimals uint8) string {
	if decimals == 0 {
		return a.String()
	}

	s := a.String()
	if len(s) <= int(decimals) {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}
	cut := len(s) - int(decimals)
	return s[:cut] + "." + s[cut:]
}
