// Package requestctx carries per-request metadata through context.Context.
package requestctx

import (
	"context"
	"strings"
)

type requestIDKey struct{}

// WithRequestID returns a child context carrying id. Blank ids leave ctx unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
