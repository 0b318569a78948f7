package access

import (
	"context"
	"fmt"

	"github.com/healthhive/registry/errors"
)

type contextKey string

const callerContextKey = contextKey("caller")

// WithCaller attaches the authenticated caller to the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromContext retrieves the authenticated caller. Requests that
// passed authentication always carry one.
func CallerFromContext(ctx context.Context) (Caller, error) {
	caller, ok := ctx.Value(callerContextKey).(Caller)
	if !ok {
		return Caller{}, fmt.Errorf("%w: no authenticated caller", errors.Unauthorized)
	}
	return caller, nil
}
