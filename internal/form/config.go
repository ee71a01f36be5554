package form

import (
	"fmt"

	"github.com/newmiodek/rejestr-skladek/internal/models"
)

// Target is the value the split fields must add up to.
type Target int

const (
	// TargetZero requires signed splits to cancel out.
	TargetZero Target = iota
	// TargetExpense requires splits to add up to the expense field.
	TargetExpense
)

func (t Target) String() string {
	if t == TargetExpense {
		return "expense"
	}
	return "zero"
}

// Positions of the fixed inputs. Input 0 is structural (the form token).
const (
	NameIndex    = 1
	ExpenseIndex = 2
)

// Config parametrizes the controller for one kind of form.
type Config struct {
	HasExpenseField bool
	SplitStartIndex int
	Target          Target
}

var (
	// PlainSplit is the form whose splits must net to zero.
	PlainSplit = Config{HasExpenseField: false, SplitStartIndex: 2, Target: TargetZero}

	// ExpenseSplit is the form whose contributions must add up to the
	// expense.
	ExpenseSplit = Config{HasExpenseField: true, SplitStartIndex: 3, Target: TargetExpense}
)

// ConfigFor returns the preset for a form variant.
func ConfigFor(v models.Variant) (Config, error) {
	switch v {
	case models.VariantPlain:
		return PlainSplit, nil
	case models.VariantExpense:
		return ExpenseSplit, nil
	default:
		return Config{}, fmt.Errorf("no form config for variant %q", v)
	}
}

// Validate checks that the configuration is self-consistent.
func (c Config) Validate() error {
	minStart := NameIndex + 1
	if c.HasExpenseField {
		minStart = ExpenseIndex + 1
	}
	if c.SplitStartIndex < minStart {
		return fmt.Errorf("split start index %d overlaps fixed fields (min %d)", c.SplitStartIndex, minStart)
	}
	if c.Target == TargetExpense && !c.HasExpenseField {
		return fmt.Errorf("target %s requires an expense field", c.Target)
	}
	return nil
}
