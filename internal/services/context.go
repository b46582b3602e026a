package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	fetchIDKey   contextKey = "fetch_id"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithFetchID annotates context with the artifact identifier of an in-flight fetch.
func WithFetchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, fetchIDKey, id)
}

// FetchIDFromContext returns the fetch identifier if present.
func FetchIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(fetchIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
