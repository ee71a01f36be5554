// Package money validates and converts user-entered monetary amounts.
//
// An amount is a signed decimal with at most two fraction digits. Either a
// comma or a period may separate the fraction; commas are normalized to
// periods before any check.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string is not a well-formed amount.
var ErrInvalidAmount = errors.New("invalid monetary amount")

var (
	// nonZeroAmount matches values with a nonzero leading digit.
	nonZeroAmount = regexp.MustCompile(`^-?[1-9][0-9]*(\.[0-9]{1,2})?$`)
	// zeroAmount matches a bare zero with an optional fraction.
	zeroAmount = regexp.MustCompile(`^-?0(\.[0-9]{1,2})?$`)
)

// Places is the number of fraction digits an amount may carry.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Normalize replaces every comma with a period.
func Normalize(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}

// Valid reports whether s denotes a valid monetary amount.
func Valid(s string) bool {
	s = Normalize(s)
	return nonZeroAmount.MatchString(s) || zeroAmount.MatchString(s)
}

// AllValid reports whether every value from index from onwards is a valid
// amount. It stops at the first invalid value. An empty range is valid.
func AllValid(values []string, from int) bool {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(values); i++ {
		if !Valid(values[i]) {
			return false
		}
	}
	return true
}

// Negative reports whether the raw value carries a leading minus sign.
// "-0" counts as negative.
func Negative(s string) bool {
	return strings.HasPrefix(s, "-")
}

// Parse returns the exact decimal value of a valid amount.
func Parse(s string) (decimal.Decimal, error) {
	if !Valid(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(Normalize(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d, nil
}

// Fixed renders d with exactly two fraction digits, rounding half away
// from zero.
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// ToMinor converts d to minor units (grosze, cents), rounding to the
// nearest unit.
func ToMinor(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromMinor renders an amount given in minor units as a two-digit decimal
// string, e.g. 46179 -> "461.79" and -5 -> "-0.05".
func FromMinor(minor int64) string {
	return Fixed(decimal.New(minor, -Places))
}
