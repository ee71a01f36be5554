package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/newmiodek/rejestr-skladek/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// FormIDKey is the context key for the form ID carried by a valid form token.
const FormIDKey contextKey = "form_id"

// GetFormID extracts the token's form ID from the context.
// Returns empty string if not found.
func GetFormID(ctx context.Context) string {
	formID, _ := ctx.Value(FormIDKey).(string)
	return formID
}

// RequireFormToken returns an interceptor that validates the form token in
// the Authorization header and adds its form ID to the request context.
// Procedures listed in public are passed through without a token.
func RequireFormToken(tokens *auth.TokenManager, public ...string) connect.UnaryInterceptorFunc {
	skip := make(map[string]bool, len(public))
	for _, p := range public {
		skip[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if skip[req.Spec().Procedure] {
				return next(ctx, req)
			}

			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			// Parse Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, FormIDKey, claims.FormID)
			return next(ctx, req)
		}
	}
}
