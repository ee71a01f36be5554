// Package feedback draws the user's attention to validation messages by
// briefly shaking them.
package feedback

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDuration is how long a shake lasts.
	DefaultDuration = 500 * time.Millisecond

	// StyleProperty is the style property a shake sets and clears.
	StyleProperty = "animation"
)

// Styler is an element whose inline style can be changed.
type Styler interface {
	SetStyle(property, value string)
}

// Animator applies a timed shake to elements.
type Animator struct {
	duration time.Duration
	onShake  func()
}

// Option configures an Animator.
type Option func(*Animator)

// WithDuration overrides DefaultDuration.
func WithDuration(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.duration = d
		}
	}
}

// WithOnShake registers a callback run every time a shake starts.
func WithOnShake(fn func()) Option {
	return func(a *Animator) {
		a.onShake = fn
	}
}

// NewAnimator creates an Animator.
func NewAnimator(opts ...Option) *Animator {
	a := &Animator{duration: DefaultDuration}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Duration returns how long each shake lasts.
func (a *Animator) Duration() time.Duration {
	return a.duration
}

// StyleValue is the animation style applied while shaking, e.g. "shake 0.5s".
func (a *Animator) StyleValue() string {
	return fmt.Sprintf("shake %ss", strconv.FormatFloat(a.duration.Seconds(), 'f', -1, 64))
}

// Shake sets the shake animation on el and clears it once the duration has
// elapsed. It returns immediately.
//
// Shaking the same element again before the first shake ends is not
// guarded: the earlier timer still clears the style when it fires, which
// can cut the later shake short. Cancel the earlier handle to avoid that.
func (a *Animator) Shake(el Styler) *Handle {
	h := &Handle{
		ID:   uuid.New().String(),
		done: make(chan struct{}),
	}

	el.SetStyle(StyleProperty, a.StyleValue())
	if a.onShake != nil {
		a.onShake()
	}

	h.mu.Lock()
	h.timer = time.AfterFunc(a.duration, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.state != statePending {
			return
		}
		el.SetStyle(StyleProperty, "")
		h.state = stateCleared
		close(h.done)
		slog.Debug("Shake cleared", "handle_id", h.ID)
	})
	h.mu.Unlock()

	return h
}

type handleState int

const (
	statePending handleState = iota
	stateCleared
	stateCancelled
)

// Handle tracks one scheduled shake.
type Handle struct {
	// ID identifies the shake in logs.
	ID string

	mu    sync.Mutex
	timer *time.Timer
	state handleState
	done  chan struct{}
}

// Cancel stops the pending clear, leaving the style as applied.
// It returns false if the style was already cleared or the shake was
// already cancelled.
func (h *Handle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != statePending {
		return false
	}
	if !h.timer.Stop() {
		// The clear has fired and is waiting for the lock. Let it run.
		return false
	}
	h.state = stateCancelled
	close(h.done)
	return true
}

// Done is closed once the shake has been cleared or cancelled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Cleared reports whether the timer has cleared the style.
func (h *Handle) Cleared() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == stateCleared
}

// Cancelled reports whether Cancel stopped the shake.
func (h *Handle) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == stateCancelled
}
