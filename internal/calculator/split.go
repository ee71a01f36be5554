package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/newmiodek/rejestr-skladek/internal/money"
)

// SplitSum is the running total of a transaction's split fields.
type SplitSum struct {
	// Total is the sum of the fields read before the first empty one.
	Total decimal.Decimal

	// AllFilled is false when an empty field stopped the sum early.
	AllFilled bool

	// Counted is the number of fields added into Total.
	Counted int
}

// Fixed returns Total rounded to two decimal places.
func (s SplitSum) Fixed() string {
	return money.Fixed(s.Total)
}

// SumSplits adds up values[from:] in order starting from zero.
// It stops at the first empty value and reports the set as not all filled.
// Values are expected to have passed money.Valid.
func SumSplits(values []string, from int) (SplitSum, error) {
	sum := SplitSum{Total: decimal.Zero, AllFilled: true}
	if from < 0 {
		from = 0
	}
	for i := from; i < len(values); i++ {
		if values[i] == "" {
			sum.AllFilled = false
			break
		}
		amount, err := money.Parse(values[i])
		if err != nil {
			return SplitSum{}, fmt.Errorf("split field %d: %w", i, err)
		}
		sum.Total = sum.Total.Add(amount)
		sum.Counted++
	}
	return sum, nil
}

// BalancedTo reports whether every split was filled and the rounded sum
// equals target rounded to two decimal places.
func (s SplitSum) BalancedTo(target decimal.Decimal) bool {
	return s.AllFilled && s.Fixed() == money.Fixed(target)
}
