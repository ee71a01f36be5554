// Package submit forwards valid transaction forms to the register backend
// as a native browser form post would.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrRejected is returned when the register backend does not answer
	// with its success redirect.
	ErrRejected = errors.New("submission rejected by register backend")

	// ErrLoginRequired is returned when the backend redirects to its login
	// page. It wraps ErrRejected.
	ErrLoginRequired = fmt.Errorf("%w: login required", ErrRejected)
)

const (
	// DefaultLoginPath is where the register backend sends anonymous users.
	DefaultLoginPath = "/login/"

	// DefaultSuccessPattern matches the page a created transaction
	// redirects to.
	DefaultSuccessPattern = `^/register/[0-9]+/transaction/[0-9]+/$`
)

// Credentials are the caller's register backend credentials, passed
// through unchanged.
type Credentials struct {
	// Cookie is the raw Cookie header, carrying the session and CSRF
	// cookies.
	Cookie string
}

type credentialsKey struct{}

// WithCredentials returns a context whose submissions carry creds.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

func credentialsFrom(ctx context.Context) Credentials {
	creds, _ := ctx.Value(credentialsKey{}).(Credentials)
	return creds
}

// Receipt is the backend's answer to a submission.
type Receipt struct {
	StatusCode int
	// Location is the redirect target of the backend.
	Location string
}

// HTTPSubmitter posts forms to a base URL.
type HTTPSubmitter struct {
	baseURL   string
	client    *http.Client
	loginPath string
	success   *regexp.Regexp
}

// Option configures an HTTPSubmitter.
type Option func(*HTTPSubmitter)

// WithLoginPath overrides DefaultLoginPath.
func WithLoginPath(path string) Option {
	return func(s *HTTPSubmitter) {
		if path != "" {
			s.loginPath = path
		}
	}
}

// WithSuccessPattern overrides DefaultSuccessPattern.
func WithSuccessPattern(re *regexp.Regexp) Option {
	return func(s *HTTPSubmitter) {
		if re != nil {
			s.success = re
		}
	}
}

// NewHTTPSubmitter creates a submitter posting to actions under baseURL.
// Redirects are returned to the caller instead of being followed.
func NewHTTPSubmitter(baseURL string, timeout time.Duration, opts ...Option) *HTTPSubmitter {
	s := &HTTPSubmitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		loginPath: DefaultLoginPath,
		success:   regexp.MustCompile(DefaultSuccessPattern),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit posts values to action as application/x-www-form-urlencoded,
// forwarding the credentials found in ctx. Only a redirect whose path
// matches the success pattern counts as accepted.
func (s *HTTPSubmitter) Submit(ctx context.Context, action string, values url.Values) (*Receipt, error) {
	target := s.baseURL + "/" + strings.TrimLeft(action, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build submission: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// The CSRF check compares these with the backend's own origin.
	req.Header.Set("Origin", s.baseURL)
	req.Header.Set("Referer", target)
	if creds := credentialsFrom(ctx); creds.Cookie != "" {
		req.Header.Set("Cookie", creds.Cookie)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post form: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	location := resp.Header.Get("Location")
	if err := s.check(resp.StatusCode, location); err != nil {
		return nil, fmt.Errorf("%s returned %d: %w", target, resp.StatusCode, err)
	}

	slog.Debug("Form forwarded", "target", target, "status", resp.StatusCode, "location", location)
	return &Receipt{StatusCode: resp.StatusCode, Location: location}, nil
}

func (s *HTTPSubmitter) check(status int, location string) error {
	if status < http.StatusMultipleChoices || status >= http.StatusBadRequest {
		return ErrRejected
	}
	if location == "" {
		return fmt.Errorf("%w: redirect without location", ErrRejected)
	}
	u, err := url.Parse(location)
	if err != nil {
		return fmt.Errorf("%w: bad location %q", ErrRejected, location)
	}
	if strings.HasPrefix(u.Path, s.loginPath) {
		return ErrLoginRequired
	}
	if !s.success.MatchString(u.Path) {
		return fmt.Errorf("%w: unexpected redirect to %s", ErrRejected, location)
	}
	return nil
}
