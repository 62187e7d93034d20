// Package context carries request-scoped identifiers used by logging and tracing.
package context

import (
	"context"
	"strings"
)

type (
	requestIDKey struct{}
	operationKey struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey{})
}

// WithOperation records the customer operation a request is serving, for
// example "update_cliente". Loggers and spans derived from ctx pick it up.
func WithOperation(ctx context.Context, operation string) context.Context {
	return withValue(ctx, operationKey{}, operation)
}

func OperationFromContext(ctx context.Context) string {
	return stringValue(ctx, operationKey{})
}

func withValue(ctx context.Context, key any, value string) context.Context {
	value = strings.TrimSpace(value)
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
