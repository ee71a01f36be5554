// Package auth issues and checks the token that ties a client to one open
// form. The token is sent back as a Bearer token on every call for that
// form.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired form token")
	ErrMissingToken = errors.New("form token required")
)

// TokenManager handles form token generation and validation.
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// Claims represents the custom JWT claims for a form token.
type Claims struct {
	FormID string `json:"form_id"`
	jwt.RegisteredClaims
}

// NewTokenManager creates a new token manager with the given secret and token duration.
// secretKey should be a strong random string (e.g., 32 bytes).
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// TTL returns how long generated tokens stay valid.
func (m *TokenManager) TTL() time.Duration {
	return m.tokenDuration
}

// Generate creates a new token for the given form, valid for TTL.
func (m *TokenManager) Generate(formID string) (string, error) {
	return m.GenerateUntil(formID, time.Now().Add(m.tokenDuration))
}

// GenerateUntil creates a token for the given form that expires at
// expiresAt (second precision).
func (m *TokenManager) GenerateUntil(formID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := &Claims{
		FormID: formID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   formID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates a token, returning the claims if valid.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.FormID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
