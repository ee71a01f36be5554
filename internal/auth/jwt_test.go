package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate("form-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.FormID != "form-1" {
		t.Errorf("FormID = %q, want %q", claims.FormID, "form-1")
	}
	if claims.Subject != "form-1" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "form-1")
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)
	expired := NewTokenManager("test-secret", -time.Minute)

	foreign, _ := other.Generate("form-1")
	stale, _ := expired.Generate("form-1")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", foreign},
		{"expired", stale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenManager_GenerateUntil(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	if m.TTL() != time.Hour {
		t.Errorf("TTL = %v, want 1h", m.TTL())
	}

	expiresAt := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	token, err := m.GenerateUntil("form-2", expiresAt)
	if err != nil {
		t.Fatalf("GenerateUntil failed: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(expiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt.Time, expiresAt)
	}

	stale, _ := m.GenerateUntil("form-2", time.Now().Add(-time.Minute))
	if _, err := m.Validate(stale); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}
