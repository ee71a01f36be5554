// Package formapi defines the messages of the form runtime API.
//
// Messages are plain Go structs carried as JSON over the Connect protocol.
package formapi

// Input describes one input of an open form, in document order.
type Input struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	// Label is the participant label for split inputs.
	Label string `json:"label,omitempty"`
}

// Participant is a register member with a split input.
type Participant struct {
	// Key names the split input "value_for_<key>"; the register backend
	// uses the member's user id.
	Key   string `json:"key"`
	Label string `json:"label"`
}

// OpenFormRequest opens a new form session.
type OpenFormRequest struct {
	// Variant is "plain" or "expense".
	Variant string `json:"variant"`
	// Action is the register backend path the form posts to.
	Action       string        `json:"action"`
	Participants []Participant `json:"participants"`
}

// OpenFormResponse identifies the opened form.
type OpenFormResponse struct {
	FormID string `json:"form_id"`
	// Token is the Bearer token for later calls on this form.
	Token string `json:"token"`
	// ExpiresAt is the Unix time after which the token and the form are
	// discarded.
	ExpiresAt int64    `json:"expires_at"`
	Inputs    []Input  `json:"inputs"`
	Messages  []string `json:"messages"`
}

// ClickRequest carries the current values of inputs 1..n and clicks the
// submit button.
type ClickRequest struct {
	FormID string   `json:"form_id"`
	Values []string `json:"values"`

	// CSRFToken is the register backend's CSRF token, written into
	// input 0 before the click.
	CSRFToken string `json:"csrf_token,omitempty"`
	// Cookie is the caller's Cookie header for the register backend,
	// forwarded with the submission.
	Cookie string `json:"cookie,omitempty"`
}

// ClickResponse reports what the click did.
type ClickResponse struct {
	// Outcome is one of valid, missing_name, invalid_expense,
	// invalid_split, unbalanced.
	Outcome string `json:"outcome"`
	// VisibleMessage is the identifier of the shown message, empty when
	// the form was submitted.
	VisibleMessage string `json:"visible_message,omitempty"`
	Submitted      bool   `json:"submitted"`
	// Location is where the register backend redirected the submission.
	Location string `json:"location,omitempty"`
}

// GetFormRequest asks for the current page state of a form.
type GetFormRequest struct {
	FormID string `json:"form_id"`
}

// MessageState is the rendering state of one validation message.
type MessageState struct {
	ID     string `json:"id"`
	Hidden bool   `json:"hidden"`
	// Animation is the inline animation style, empty when not shaking.
	Animation string `json:"animation,omitempty"`
}

// GetFormResponse describes a form and the state of its messages.
type GetFormResponse struct {
	FormID       string         `json:"form_id"`
	Variant      string         `json:"variant"`
	Action       string         `json:"action"`
	Participants []Participant  `json:"participants"`
	Inputs       []Input        `json:"inputs"`
	Messages     []MessageState `json:"messages"`
	CreatedAt    int64          `json:"created_at"`
	ExpiresAt    int64          `json:"expires_at"`
}

// CloseFormRequest discards a form session.
type CloseFormRequest struct {
	FormID string `json:"form_id"`
}

// CloseFormResponse is empty.
type CloseFormResponse struct{}
