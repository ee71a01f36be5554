package dom

import (
	"github.com/newmiodek/rejestr-skladek/internal/models"
)

// Input names, matching the register backend's form fields.
const (
	CSRFInputName    = "csrfmiddlewaretoken"
	NameInputName    = "transaction_name"
	ExpenseInputName = "expense"
)

// SplitInputName returns the input name of a participant's split.
func SplitInputName(key string) string {
	return "value_for_" + key
}

// NotBalancedID returns the identifier of the message shown when the
// splits do not add up for the variant.
func NotBalancedID(v models.Variant) string {
	if v == models.VariantExpense {
		return NotAddingUpID
	}
	return NotAddingToZeroID
}

// MessageIDs returns the identifiers of the variant's validation messages.
func MessageIDs(v models.Variant) []string {
	ids := []string{MustNameID, InvalidValueID}
	if v == models.VariantExpense {
		ids = append(ids, InvalidExpenseID)
	}
	return append(ids, NotBalancedID(v))
}

// Build creates the page for a form layout. Input 0 carries the CSRF token
// of the register backend, input 1
// is the transaction name, input 2 the expense for the expense variant,
// followed by one split input per participant. All messages start hidden.
func Build(layout *models.FormLayout, csrfToken string, submit SubmitFunc) *Document {
	doc := NewDocument()

	form := NewForm(FormID, layout.Action, submit)
	form.AddInput(NewInput("id_"+CSRFInputName, CSRFInputName, csrfToken))
	form.AddInput(NewInput("id_"+NameInputName, NameInputName, ""))
	if layout.Variant == models.VariantExpense {
		form.AddInput(NewInput("id_"+ExpenseInputName, ExpenseInputName, ""))
	}
	for _, p := range layout.Participants {
		name := SplitInputName(p.Key)
		form.AddInput(NewInput("id_"+name, name, ""))
	}
	doc.Add(form)
	for _, in := range form.Inputs() {
		doc.Add(in)
	}

	doc.Add(NewButton(ButtonID))
	for _, id := range MessageIDs(layout.Variant) {
		doc.Add(NewElement(id, true))
	}

	return doc
}
