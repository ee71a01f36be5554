// Package dom is an in-memory page model of the "new transaction" form.
//
// It exposes what the form controller needs from a page: elements looked up
// by identifier, a hidden attribute and inline style on every element, the
// ordered input collection of the form, and native form submission.
// Element state is safe for concurrent use because shake timers clear
// styles from their own goroutines.
package dom

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// ErrNoElement is returned when no element has the requested identifier
// or the element has a different kind.
var ErrNoElement = errors.New("element not found")

// Element identifiers used by the transaction form pages.
const (
	FormID            = "new_transaction_form"
	ButtonID          = "new_transaction_button"
	MustNameID        = "must_name_new_transaction"
	InvalidValueID    = "invalid_value"
	InvalidExpenseID  = "invalid_expense"
	NotAddingUpID     = "not_adding_up"
	NotAddingToZeroID = "not_adding_to_zero"
)

// Node is anything stored in a Document.
type Node interface {
	ID() string
	base() *Element
}

// Element is a generic page element with a hidden attribute and inline
// style.
type Element struct {
	id string

	mu     sync.Mutex
	hidden bool
	style  map[string]string
}

// NewElement creates an element. Message elements start hidden.
func NewElement(id string, hidden bool) *Element {
	return &Element{id: id, hidden: hidden, style: make(map[string]string)}
}

// ID returns the element identifier.
func (e *Element) ID() string { return e.id }

func (e *Element) base() *Element { return e }

// SetHidden sets or removes the hidden attribute.
func (e *Element) SetHidden(hidden bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = hidden
}

// Hidden reports whether the hidden attribute is present.
func (e *Element) Hidden() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hidden
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(property, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if value == "" {
		delete(e.style, property)
		return
	}
	e.style[property] = value
}

// Style returns an inline style property, or "" if unset.
func (e *Element) Style(property string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style[property]
}

// Input is a named form input.
type Input struct {
	*Element
	name  string
	value string
}

// NewInput creates an input with an initial value.
func NewInput(id, name, value string) *Input {
	return &Input{Element: NewElement(id, false), name: name, value: value}
}

// Name returns the name the value is submitted under.
func (i *Input) Name() string { return i.name }

// Value returns the current value.
func (i *Input) Value() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value
}

// SetValue replaces the current value.
func (i *Input) SetValue(v string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.value = v
}

// Button is a clickable element with a single click handler.
type Button struct {
	*Element

	handlerMu sync.Mutex
	onClick   func(ctx context.Context) error
}

// NewButton creates a button without a handler.
func NewButton(id string) *Button {
	return &Button{Element: NewElement(id, false)}
}

// OnClick replaces the click handler.
func (b *Button) OnClick(fn func(ctx context.Context) error) {
	b.handlerMu.Lock()
	defer b.handlerMu.Unlock()
	b.onClick = fn
}

// Click runs the click handler. A button without a handler does nothing.
func (b *Button) Click(ctx context.Context) error {
	b.handlerMu.Lock()
	fn := b.onClick
	b.handlerMu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// SubmitFunc receives a natively submitted form.
type SubmitFunc func(ctx context.Context, action string, values url.Values) error

// Form owns an ordered collection of inputs and posts them on Submit.
type Form struct {
	*Element
	action string
	inputs []*Input
	submit SubmitFunc
}

// NewForm creates a form posting to action through submit.
func NewForm(id, action string, submit SubmitFunc) *Form {
	return &Form{Element: NewElement(id, false), action: action, submit: submit}
}

// Action returns the path the form posts to.
func (f *Form) Action() string { return f.action }

// AddInput appends an input to the form's collection.
func (f *Form) AddInput(in *Input) {
	f.inputs = append(f.inputs, in)
}

// Inputs returns the form's inputs in document order.
func (f *Form) Inputs() []*Input {
	out := make([]*Input, len(f.inputs))
	copy(out, f.inputs)
	return out
}

// Values collects the named inputs the way a browser encodes a form post.
func (f *Form) Values() url.Values {
	values := url.Values{}
	for _, in := range f.inputs {
		if in.Name() == "" {
			continue
		}
		values.Add(in.Name(), in.Value())
	}
	return values
}

// Submit posts the form's values to its action.
func (f *Form) Submit(ctx context.Context) error {
	if f.submit == nil {
		return fmt.Errorf("form %s has no submit target", f.id)
	}
	return f.submit(ctx, f.action, f.Values())
}

// Document holds a page's elements by identifier.
type Document struct {
	mu    sync.RWMutex
	nodes map[string]Node
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{nodes: make(map[string]Node)}
}

// Add registers a node, replacing any node with the same identifier.
func (d *Document) Add(n Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes[n.ID()] = n
}

func (d *Document) lookup(id string) (Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, id)
	}
	return n, nil
}

// Element returns any node's underlying element.
func (d *Document) Element(id string) (*Element, error) {
	n, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	return n.base(), nil
}

// Form returns the form with the given identifier.
func (d *Document) Form(id string) (*Form, error) {
	n, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	f, ok := n.(*Form)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a form", ErrNoElement, id)
	}
	return f, nil
}

// Button returns the button with the given identifier.
func (d *Document) Button(id string) (*Button, error) {
	n, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	b, ok := n.(*Button)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a button", ErrNoElement, id)
	}
	return b, nil
}

// Has reports whether an element with the identifier exists.
func (d *Document) Has(id string) bool {
	_, err := d.lookup(id)
	return err == nil
}

// IDs returns all element identifiers, sorted.
func (d *Document) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
