package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/newmiodek/rejestr-skladek/internal/auth"
	"github.com/newmiodek/rejestr-skladek/internal/dom"
	"github.com/newmiodek/rejestr-skladek/internal/feedback"
	"github.com/newmiodek/rejestr-skladek/internal/form"
	"github.com/newmiodek/rejestr-skladek/internal/metrics"
	"github.com/newmiodek/rejestr-skladek/internal/middleware"
	"github.com/newmiodek/rejestr-skladek/internal/models"
	"github.com/newmiodek/rejestr-skladek/internal/money"
	"github.com/newmiodek/rejestr-skladek/internal/storage"
	"github.com/newmiodek/rejestr-skladek/internal/submit"
	"github.com/newmiodek/rejestr-skladek/pkg/formapi"
	"github.com/newmiodek/rejestr-skladek/pkg/formapi/formapiconnect"
)

var _ formapiconnect.FormServiceHandler = (*FormService)(nil)

// Submitter forwards a valid form to the register backend.
type Submitter interface {
	Submit(ctx context.Context, action string, values url.Values) (*submit.Receipt, error)
}

// TokenIssuer issues the Bearer tokens of new forms.
type TokenIssuer interface {
	TTL() time.Duration
	GenerateUntil(formID string, expiresAt time.Time) (string, error)
}

var _ TokenIssuer = (*auth.TokenManager)(nil)

// participantKey limits keys to characters valid in a form field name.
var participantKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// session is one open form: its page and the controller bound to it.
// mu serializes clicks the way a page's single UI thread would.
type session struct {
	mu        sync.Mutex
	layout    *models.FormLayout
	expiresAt time.Time
	doc     *dom.Document
	button  *dom.Button
	inputs  []*dom.Input
	outcome form.Outcome
	receipt *submit.Receipt
}

// FormService implements the Connect FormService.
type FormService struct {
	store     storage.Store
	tokens    TokenIssuer
	submitter Submitter
	animator  *feedback.Animator
	metrics   *metrics.Metrics
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewFormService creates a FormService. A nil animator shakes for
// feedback.DefaultDuration; a nil metrics records nothing.
func NewFormService(store storage.Store, tokens TokenIssuer, submitter Submitter, animator *feedback.Animator, m *metrics.Metrics) *FormService {
	if animator == nil {
		animator = feedback.NewAnimator()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &FormService{
		store:     store,
		tokens:    tokens,
		submitter: submitter,
		animator:  animator,
		metrics:   m,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// validateLayout checks an OpenForm request.
func validateLayout(msg *formapi.OpenFormRequest) (*models.FormLayout, error) {
	variant, err := models.ParseVariant(msg.Variant)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(msg.Action, "/") {
		return nil, fmt.Errorf("action %q must be an absolute path", msg.Action)
	}
	if len(msg.Participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	participants := make([]models.Participant, len(msg.Participants))
	seen := make(map[string]bool, len(msg.Participants))
	for i, p := range msg.Participants {
		label := strings.TrimSpace(p.Label)
		if label == "" {
			return nil, fmt.Errorf("participant %d has an empty label", i+1)
		}
		if !participantKey.MatchString(p.Key) {
			return nil, fmt.Errorf("participant %d has an invalid key %q", i+1, p.Key)
		}
		if seen[p.Key] {
			return nil, fmt.Errorf("participant key %q is repeated", p.Key)
		}
		seen[p.Key] = true
		participants[i] = models.Participant{Key: p.Key, Label: label}
	}
	return &models.FormLayout{Variant: variant, Action: msg.Action, Participants: participants}, nil
}

// newSession builds the page for layout and binds a controller to it.
func (s *FormService) newSession(layout *models.FormLayout) (*session, error) {
	cfg, err := form.ConfigFor(layout.Variant)
	if err != nil {
		return nil, err
	}

	sess := &session{layout: layout, expiresAt: time.Unix(layout.ExpiresAt, 0)}
	submitFn := func(ctx context.Context, action string, values url.Values) error {
		receipt, err := s.submitter.Submit(ctx, action, values)
		if errors.Is(err, submit.ErrRejected) {
			s.metrics.Submissions.WithLabelValues("rejected").Inc()
			return err
		}
		if err != nil {
			s.metrics.Submissions.WithLabelValues("failed").Inc()
			return err
		}
		s.metrics.Submissions.WithLabelValues("ok").Inc()
		sess.receipt = receipt
		logSubmission(layout, values, receipt)
		return nil
	}
	// The CSRF input is filled from each click request.
	sess.doc = dom.Build(layout, "", submitFn)

	onOutcome := func(o form.Outcome) {
		sess.outcome = o
		s.metrics.ClickOutcomes.WithLabelValues(string(layout.Variant), o.String()).Inc()
	}
	if _, err := form.Init(sess.doc, cfg, s.animator, form.WithOutcomeHook(onOutcome)); err != nil {
		return nil, fmt.Errorf("failed to init form controller: %w", err)
	}

	if sess.button, err = sess.doc.Button(dom.ButtonID); err != nil {
		return nil, err
	}
	f, err := sess.doc.Form(dom.FormID)
	if err != nil {
		return nil, err
	}
	sess.inputs = f.Inputs()
	return sess, nil
}

// logSubmission records a forwarded form. Amounts are logged in minor units.
func logSubmission(layout *models.FormLayout, values url.Values, receipt *submit.Receipt) {
	attrs := []any{"form_id", layout.ID, "status", receipt.StatusCode}
	if layout.Variant == models.VariantExpense {
		if d, err := money.Parse(values.Get(dom.ExpenseInputName)); err == nil {
			attrs = append(attrs, "expense_minor", money.ToMinor(d))
		}
	}
	slog.Info("Form submitted", attrs...)
}

// session returns the open session for formID, rebuilding it from storage
// when it is not held in memory (e.g. after a restart). Expired sessions
// are discarded and reported as not found.
func (s *FormService) session(ctx context.Context, formID string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[formID]
	s.mu.Unlock()
	if ok {
		if s.expired(sess.expiresAt) {
			s.discard(ctx, formID)
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("form %s expired", formID))
		}
		return sess, nil
	}

	layout, err := s.store.GetForm(ctx, formID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if s.expired(time.Unix(layout.ExpiresAt, 0)) {
		s.discard(ctx, formID)
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("form %s expired", formID))
	}
	sess, err = s.newSession(layout)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[formID]; ok {
		return existing, nil
	}
	s.sessions[formID] = sess
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	slog.Info("Form session rebuilt", "form_id", formID)
	return sess, nil
}

func (s *FormService) expired(at time.Time) bool {
	return !s.now().Before(at)
}

// discard drops a session and its stored layout. A missing layout is not
// an error.
func (s *FormService) discard(ctx context.Context, formID string) {
	s.mu.Lock()
	delete(s.sessions, formID)
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if err := s.store.DeleteForm(ctx, formID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("Failed to delete form layout", "form_id", formID, "error", err)
	}
}

// Sweep discards every session and stored layout whose token has expired.
// It returns the number of sessions dropped from memory and layouts
// deleted from storage.
func (s *FormService) Sweep(ctx context.Context) (int, int64, error) {
	now := s.now()

	s.mu.Lock()
	evicted := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
			evicted++
		}
	}
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	deleted, err := s.store.DeleteExpiredForms(ctx, now.Unix())
	if err != nil {
		return evicted, 0, err
	}
	if evicted > 0 || deleted > 0 {
		slog.Info("Expired forms swept", "sessions", evicted, "layouts", deleted)
	}
	return evicted, deleted, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *FormService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.Sweep(ctx); err != nil {
				slog.Error("Sweep failed", "error", err)
			}
		}
	}
}

// authorize checks that the request's form token belongs to formID.
func authorize(ctx context.Context, formID string) error {
	if formID == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("form_id required"))
	}
	if middleware.GetFormID(ctx) != formID {
		return connect.NewError(connect.CodePermissionDenied, fmt.Errorf("token does not belong to form %s", formID))
	}
	return nil
}

func describeInputs(layout *models.FormLayout, inputs []*dom.Input) []formapi.Input {
	cfg, _ := form.ConfigFor(layout.Variant)
	out := make([]formapi.Input, len(inputs))
	for i, in := range inputs {
		out[i] = formapi.Input{Index: i, Name: in.Name()}
		if p := i - cfg.SplitStartIndex; p >= 0 && p < len(layout.Participants) {
			out[i].Label = layout.Participants[p].Label
		}
	}
	return out
}

// visibleMessage returns the identifier of the unhidden message, if any.
func (sess *session) visibleMessage() string {
	for _, id := range dom.MessageIDs(sess.layout.Variant) {
		el, err := sess.doc.Element(id)
		if err == nil && !el.Hidden() {
			return id
		}
	}
	return ""
}

// OpenForm creates a form layout, its page and its token.
func (s *FormService) OpenForm(ctx context.Context, req *connect.Request[formapi.OpenFormRequest]) (*connect.Response[formapi.OpenFormResponse], error) {
	layout, err := validateLayout(req.Msg)
	if err != nil {
		slog.Warn("OpenForm rejected", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	expiresAt := s.now().Add(s.tokens.TTL()).Truncate(time.Second)
	layout.ExpiresAt = expiresAt.Unix()
	if err := s.store.CreateForm(ctx, layout); err != nil {
		slog.Error("OpenForm failed to store layout", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.tokens.GenerateUntil(layout.ID, expiresAt)
	if err != nil {
		slog.Error("OpenForm failed to issue token", "form_id", layout.ID, "error", err)
		s.discard(ctx, layout.ID)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	sess, err := s.newSession(layout)
	if err != nil {
		slog.Error("OpenForm failed to build page", "form_id", layout.ID, "error", err)
		s.discard(ctx, layout.ID)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.mu.Lock()
	s.sessions[layout.ID] = sess
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	slog.Info("Form opened",
		"form_id", layout.ID,
		"variant", layout.Variant,
		"participants", len(layout.Participants),
	)

	return connect.NewResponse(&formapi.OpenFormResponse{
		FormID:    layout.ID,
		Token:     token,
		ExpiresAt: layout.ExpiresAt,
		Inputs:    describeInputs(layout, sess.inputs),
		Messages:  dom.MessageIDs(layout.Variant),
	}), nil
}

// Click writes the submitted values into the page and clicks its submit
// button.
func (s *FormService) Click(ctx context.Context, req *connect.Request[formapi.ClickRequest]) (*connect.Response[formapi.ClickResponse], error) {
	if err := authorize(ctx, req.Msg.FormID); err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, req.Msg.FormID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Input 0 is the structural CSRF field, filled from CSRFToken.
	if want := len(sess.inputs) - 1; len(req.Msg.Values) != want {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("expected %d values, got %d", want, len(req.Msg.Values)))
	}
	for i, v := range req.Msg.Values {
		slog.Debug("Setting field", "form_id", req.Msg.FormID, "index", i+1, "name", sess.inputs[i+1].Name())
		sess.inputs[i+1].SetValue(v)
	}

	sess.inputs[0].SetValue(req.Msg.CSRFToken)

	sess.receipt = nil
	ctx = submit.WithCredentials(ctx, submit.Credentials{Cookie: req.Msg.Cookie})
	if err := sess.button.Click(ctx); err != nil {
		if errors.Is(err, submit.ErrRejected) {
			slog.Warn("Click rejected by register backend", "form_id", req.Msg.FormID, "error", err)
			return nil, connect.NewError(connect.CodeFailedPrecondition, err)
		}
		slog.Error("Click failed to submit form", "form_id", req.Msg.FormID, "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	resp := &formapi.ClickResponse{
		Outcome:        sess.outcome.String(),
		VisibleMessage: sess.visibleMessage(),
		Submitted:      sess.outcome == form.OutcomeValid,
	}
	if sess.receipt != nil {
		resp.Location = sess.receipt.Location
	}
	slog.Info("Form clicked", "form_id", req.Msg.FormID, "outcome", resp.Outcome, "submitted", resp.Submitted)
	return connect.NewResponse(resp), nil
}

// GetForm returns the layout and the rendering state of the messages.
func (s *FormService) GetForm(ctx context.Context, req *connect.Request[formapi.GetFormRequest]) (*connect.Response[formapi.GetFormResponse], error) {
	if err := authorize(ctx, req.Msg.FormID); err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, req.Msg.FormID)
	if err != nil {
		return nil, err
	}

	participants := make([]formapi.Participant, len(sess.layout.Participants))
	for i, p := range sess.layout.Participants {
		participants[i] = formapi.Participant{Key: p.Key, Label: p.Label}
	}

	ids := dom.MessageIDs(sess.layout.Variant)
	messages := make([]formapi.MessageState, 0, len(ids))
	for _, id := range ids {
		el, err := sess.doc.Element(id)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		messages = append(messages, formapi.MessageState{
			ID:        id,
			Hidden:    el.Hidden(),
			Animation: el.Style(feedback.StyleProperty),
		})
	}

	return connect.NewResponse(&formapi.GetFormResponse{
		FormID:       sess.layout.ID,
		Variant:      string(sess.layout.Variant),
		Action:       sess.layout.Action,
		Participants: participants,
		Inputs:       describeInputs(sess.layout, sess.inputs),
		Messages:     messages,
		CreatedAt:    sess.layout.CreatedAt,
		ExpiresAt:    sess.layout.ExpiresAt,
	}), nil
}

// CloseForm discards the session and its stored layout.
func (s *FormService) CloseForm(ctx context.Context, req *connect.Request[formapi.CloseFormRequest]) (*connect.Response[formapi.CloseFormResponse], error) {
	if err := authorize(ctx, req.Msg.FormID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, req.Msg.FormID)
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if err := s.store.DeleteForm(ctx, req.Msg.FormID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		slog.Error("CloseForm failed", "form_id", req.Msg.FormID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Form closed", "form_id", req.Msg.FormID)
	return connect.NewResponse(&formapi.CloseFormResponse{}), nil
}
