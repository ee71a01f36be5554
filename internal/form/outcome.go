package form

import (
	"github.com/shopspring/decimal"

	"github.com/newmiodek/rejestr-skladek/internal/calculator"
	"github.com/newmiodek/rejestr-skladek/internal/money"
)

// Outcome is the result of validating a form. Exactly one applies per click.
type Outcome int

const (
	// OutcomeValid means every check passed and the form is submitted.
	OutcomeValid Outcome = iota
	// OutcomeMissingName means the transaction name is empty.
	OutcomeMissingName
	// OutcomeInvalidExpense means the expense is malformed or negative.
	OutcomeInvalidExpense
	// OutcomeInvalidSplit means a split value is empty or malformed.
	OutcomeInvalidSplit
	// OutcomeUnbalanced means the splits do not add up to the target.
	OutcomeUnbalanced
)

var outcomeNames = map[Outcome]string{
	OutcomeValid:          "valid",
	OutcomeMissingName:    "missing_name",
	OutcomeInvalidExpense: "invalid_expense",
	OutcomeInvalidSplit:   "invalid_split",
	OutcomeUnbalanced:     "unbalanced",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

func valueAt(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// Evaluate runs the checks in priority order over the raw field values
// (index 0 is the structural field) and returns the first that fails.
func Evaluate(cfg Config, values []string) Outcome {
	if valueAt(values, NameIndex) == "" {
		return OutcomeMissingName
	}

	expense := valueAt(values, ExpenseIndex)
	if cfg.HasExpenseField && (!money.Valid(expense) || money.Negative(expense)) {
		return OutcomeInvalidExpense
	}

	if !money.AllValid(values, cfg.SplitStartIndex) {
		return OutcomeInvalidSplit
	}

	sum, err := calculator.SumSplits(values, cfg.SplitStartIndex)
	if err != nil {
		return OutcomeInvalidSplit
	}

	target := decimal.Zero
	if cfg.Target == TargetExpense {
		target, err = money.Parse(expense)
		if err != nil {
			return OutcomeInvalidExpense
		}
	}

	if !sum.BalancedTo(target) {
		return OutcomeUnbalanced
	}
	return OutcomeValid
}
