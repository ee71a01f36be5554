// Package form gates submission of the "new transaction" form.
//
// A Controller reads the live field values on every click, runs the checks
// of Evaluate in priority order and either submits the form or reveals the
// single matching message, shaking it to draw attention. Nothing is kept
// between clicks.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/newmiodek/rejestr-skladek/internal/dom"
	"github.com/newmiodek/rejestr-skladek/internal/feedback"
)

// ErrMissingElement is returned when a required element is not provided.
var ErrMissingElement = errors.New("required form element missing")

// Field is an input whose current value can be read.
type Field interface {
	Value() string
}

// Message is a validation message that can be shown, hidden and shaken.
type Message interface {
	feedback.Styler
	SetHidden(hidden bool)
}

// Submitter performs the form's native submission.
type Submitter interface {
	Submit(ctx context.Context) error
}

// Shaker animates a message.
type Shaker interface {
	Shake(el feedback.Styler) *feedback.Handle
}

// Elements are the page elements a Controller works on.
// InvalidExpense is required only for configs with an expense field.
type Elements struct {
	Form           Submitter
	Fields         []Field
	MustName       Message
	InvalidValue   Message
	InvalidExpense Message
	NotBalanced    Message
}

// Option configures a Controller.
type Option func(*Controller)

// WithOutcomeHook registers a callback run after every click.
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(c *Controller) {
		c.onOutcome = fn
	}
}

// Controller validates the form on each click of the submit control.
type Controller struct {
	cfg       Config
	el        Elements
	shaker    Shaker
	onOutcome func(Outcome)
}

// New creates a Controller from explicitly provided elements.
func New(el Elements, cfg Config, shaker Shaker, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if el.Form == nil || el.MustName == nil || el.InvalidValue == nil || el.NotBalanced == nil {
		return nil, ErrMissingElement
	}
	if cfg.HasExpenseField && el.InvalidExpense == nil {
		return nil, fmt.Errorf("%w: invalid expense message", ErrMissingElement)
	}
	if shaker == nil {
		shaker = feedback.NewAnimator()
	}

	c := &Controller{cfg: cfg, el: el, shaker: shaker}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Init resolves the controller's elements from doc by their identifiers and
// binds the click handler to the submit button. Call it once per page.
func Init(doc *dom.Document, cfg Config, shaker Shaker, opts ...Option) (*Controller, error) {
	f, err := doc.Form(dom.FormID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingElement, err)
	}
	button, err := doc.Button(dom.ButtonID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingElement, err)
	}

	message := func(id string) (Message, error) {
		el, err := doc.Element(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingElement, err)
		}
		return el, nil
	}

	el := Elements{Form: f}
	for _, in := range f.Inputs() {
		el.Fields = append(el.Fields, in)
	}
	if el.MustName, err = message(dom.MustNameID); err != nil {
		return nil, err
	}
	if el.InvalidValue, err = message(dom.InvalidValueID); err != nil {
		return nil, err
	}
	notBalancedID := dom.NotAddingToZeroID
	if cfg.HasExpenseField {
		if el.InvalidExpense, err = message(dom.InvalidExpenseID); err != nil {
			return nil, err
		}
	}
	if cfg.Target == TargetExpense {
		notBalancedID = dom.NotAddingUpID
	}
	if el.NotBalanced, err = message(notBalancedID); err != nil {
		return nil, err
	}

	c, err := New(el, cfg, shaker, opts...)
	if err != nil {
		return nil, err
	}
	button.OnClick(func(ctx context.Context) error {
		_, err := c.Click(ctx)
		return err
	})
	return c, nil
}

// Result describes what a click did.
type Result struct {
	Outcome Outcome

	// Shake is the handle of the message animation, nil when the form was
	// submitted.
	Shake *feedback.Handle

	// Submitted is true when the form was handed to its submit target.
	Submitted bool
}

// Click validates the current field values and acts on the outcome.
// A non-nil error means the form was valid but submission failed.
func (c *Controller) Click(ctx context.Context) (Result, error) {
	values := make([]string, len(c.el.Fields))
	for i, f := range c.el.Fields {
		values[i] = f.Value()
	}

	outcome := Evaluate(c.cfg, values)
	if c.onOutcome != nil {
		c.onOutcome(outcome)
	}
	slog.Debug("Form clicked", "outcome", outcome.String(), "fields", len(values))

	result := Result{Outcome: outcome}
	switch outcome {
	case OutcomeMissingName:
		result.Shake = c.reveal(c.el.MustName)
	case OutcomeInvalidExpense:
		result.Shake = c.reveal(c.el.InvalidExpense)
	case OutcomeInvalidSplit:
		result.Shake = c.reveal(c.el.InvalidValue)
	case OutcomeUnbalanced:
		result.Shake = c.reveal(c.el.NotBalanced)
	case OutcomeValid:
		c.reveal(nil)
		if err := c.el.Form.Submit(ctx); err != nil {
			return result, fmt.Errorf("failed to submit form: %w", err)
		}
		result.Submitted = true
	}
	return result, nil
}

// reveal hides every message except show, which is unhidden and shaken.
// A nil show hides them all.
func (c *Controller) reveal(show Message) *feedback.Handle {
	for _, m := range c.messages() {
		if m != show {
			m.SetHidden(true)
		}
	}
	if show == nil {
		return nil
	}
	show.SetHidden(false)
	return c.shaker.Shake(show)
}

func (c *Controller) messages() []Message {
	ms := []Message{c.el.MustName, c.el.InvalidValue}
	if c.el.InvalidExpense != nil {
		ms = append(ms, c.el.InvalidExpense)
	}
	return append(ms, c.el.NotBalanced)
}
