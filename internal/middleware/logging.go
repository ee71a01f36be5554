package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/newmiodek/rejestr-skladek/pkg/formapi"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, form and duration. Click calls also log what the
// click did; failed calls log the error code.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"form_id", GetFormID(ctx), // empty for OpenForm
				"duration_ms", time.Since(start).Milliseconds(),
			}

			var connectErr *connect.Error
			switch {
			case errors.As(err, &connectErr):
				attrs = append(attrs, "code", connectErr.Code(), "error", connectErr.Message())
				slog.Warn("RPC error", attrs...)
			case err != nil:
				attrs = append(attrs, "error", err)
				slog.Error("RPC error", attrs...)
			default:
				if resp != nil {
					attrs = append(attrs, responseAttrs(resp.Any())...)
				}
				slog.Info("RPC ok", attrs...)
			}

			return resp, err
		}
	}
}

// responseAttrs returns log attributes describing a response message.
func responseAttrs(msg any) []any {
	switch m := msg.(type) {
	case *formapi.ClickResponse:
		attrs := []any{"outcome", m.Outcome, "submitted", m.Submitted}
		if m.VisibleMessage != "" {
			attrs = append(attrs, "message", m.VisibleMessage)
		}
		if m.Location != "" {
			attrs = append(attrs, "location", m.Location)
		}
		return attrs
	case *formapi.OpenFormResponse:
		return []any{"opened_form_id", m.FormID, "inputs", len(m.Inputs)}
	default:
		return nil
	}
}
