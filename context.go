package electric

import "context"

type contextKey int

const ctxKeyRequestID contextKey = iota

// WithRequestID attaches a correlation id to ctx. Every ValidateWrite
// and FilterRead call forwards ctx unchanged to the decision log and
// to every plugin hook, so this id appears in decisionlog.Entry.RequestID
// and is available to a plugin's own hook implementations via
// RequestIDFromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext returns the correlation id attached by
// WithRequestID, or "" if none was set. Plugin hook implementations
// can call this to tag their own logging with the request that
// triggered them.
func RequestIDFromContext(ctx context.Context) string {
	return requestIDFromContext(ctx)
}

func requestIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	if !ok {
		return ""
	}

	return v
}
