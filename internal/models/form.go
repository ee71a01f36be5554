package models

import "fmt"

// Variant selects which kind of transaction form is shown.
type Variant string

const (
	// VariantPlain is a form whose signed split values must net to zero.
	VariantPlain Variant = "plain"

	// VariantExpense is a form with a total expense that the
	// contributions must add up to.
	VariantExpense Variant = "expense"
)

// ParseVariant converts a wire value to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantPlain, VariantExpense:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("unknown form variant %q", s)
	}
}

// Participant is one register member with a split field on the form.
type Participant struct {
	// Key names the member's split input, "value_for_<key>". The register
	// backend uses the member's user id.
	Key string

	// Label is shown next to the split input.
	Label string
}

// FormLayout describes one "new transaction" form.
type FormLayout struct {
	// ID is the unique identifier for the form (UUID format).
	ID string

	// Variant selects the validation rules.
	Variant Variant

	// Action is the path on the register backend the form posts to,
	// e.g. "/register/4/new-transaction/".
	Action string

	// Participants own the split fields, in display order.
	// One split input is rendered per participant.
	Participants []Participant

	// CreatedAt is the Unix timestamp when the form was opened.
	CreatedAt int64

	// ExpiresAt is the Unix timestamp after which the form's token is no
	// longer accepted and the layout may be removed.
	ExpiresAt int64
}
