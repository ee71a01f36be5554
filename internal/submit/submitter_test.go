package submit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"
)

func TestHTTPSubmitter_Submit(t *testing.T) {
	var gotPath, gotType, gotCookie, gotReferer string
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotCookie = r.Header.Get("Cookie")
		gotReferer = r.Header.Get("Referer")
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm failed: %v", err)
		}
		gotForm = r.PostForm
		http.Redirect(w, r, "/register/1/transaction/7/", http.StatusFound)
	}))
	defer server.Close()

	s := NewHTTPSubmitter(server.URL+"/", time.Second)
	values := url.Values{"transaction_name": {"Pizza"}, "value_for_1": {"10"}, "value_for_2": {"-10"}}
	ctx := WithCredentials(context.Background(), Credentials{Cookie: "sessionid=abc; csrftoken=xyz"})

	receipt, err := s.Submit(ctx, "/register/1/new-transaction/", values)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if gotPath != "/register/1/new-transaction/" {
		t.Errorf("path = %q", gotPath)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Errorf("content type = %q", gotType)
	}
	if gotCookie != "sessionid=abc; csrftoken=xyz" {
		t.Errorf("cookie = %q", gotCookie)
	}
	if gotReferer != server.URL+"/register/1/new-transaction/" {
		t.Errorf("referer = %q", gotReferer)
	}
	if gotForm.Get("transaction_name") != "Pizza" || gotForm.Get("value_for_2") != "-10" {
		t.Errorf("form = %v", gotForm)
	}
	if receipt.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want %d", receipt.StatusCode, http.StatusFound)
	}
	if receipt.Location != "/register/1/transaction/7/" {
		t.Errorf("location = %q", receipt.Location)
	}
}

func TestHTTPSubmitter_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		location  string
		wantLogin bool
	}{
		{"validation error page", http.StatusUnprocessableEntity, "", false},
		{"bad request", http.StatusBadRequest, "", false},
		{"form re-rendered", http.StatusOK, "", false},
		{"login redirect", http.StatusFound, "/login/?next=/register/4/new-transaction/", true},
		{"absolute login redirect", http.StatusFound, "https://rejestr.example/login/?next=/", true},
		{"redirect back to the form", http.StatusFound, "/register/4/new-transaction/", false},
		{"redirect to userspace", http.StatusFound, "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.location != "" {
					w.Header().Set("Location", tt.location)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			s := NewHTTPSubmitter(server.URL, time.Second)
			receipt, err := s.Submit(context.Background(), "/register/4/new-transaction/", url.Values{})
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("expected ErrRejected, got receipt=%+v err=%v", receipt, err)
			}
			if got := errors.Is(err, ErrLoginRequired); got != tt.wantLogin {
				t.Errorf("ErrLoginRequired = %v, want %v (err %v)", got, tt.wantLogin, err)
			}
		})
	}
}

func TestHTTPSubmitter_CustomRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/anon/":
			http.Redirect(w, r, "/accounts/login/?next=/anon/", http.StatusFound)
		default:
			http.Redirect(w, r, "/done/", http.StatusSeeOther)
		}
	}))
	defer server.Close()

	s := NewHTTPSubmitter(server.URL, time.Second,
		WithLoginPath("/accounts/login/"),
		WithSuccessPattern(regexp.MustCompile(`^/done/$`)),
	)
	if _, err := s.Submit(context.Background(), "/tx/", url.Values{}); err != nil {
		t.Errorf("expected custom success redirect to be accepted, got %v", err)
	}
	if _, err := s.Submit(context.Background(), "/anon/", url.Values{}); !errors.Is(err, ErrLoginRequired) {
		t.Errorf("expected ErrLoginRequired, got %v", err)
	}
}

func TestHTTPSubmitter_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	s := NewHTTPSubmitter(addr, time.Second)
	if _, err := s.Submit(context.Background(), "/", url.Values{}); err == nil {
		t.Error("expected error for unreachable backend")
	}
}
