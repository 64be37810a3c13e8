// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	userIDKey    contextKey = "ctxutil.userID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithUserID adds a user ID to the context.
// User ID is the digits-only WhatsApp account identifier from webhook
// deliveries and is used for session lookup and rate limiting.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID retrieves the user ID from the context.
// Returns the user ID if found, empty string otherwise.
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok && userID != "" {
			return userID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context for tracing.
// Request ID is the provider message id when available, otherwise a
// generated UUID, and is attached to every log line via the logger's
// context handler.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	if v := ctx.Value(requestIDKey); v != nil {
		if requestID, ok := v.(string); ok && requestID != "" {
			return requestID, true
		}
	}
	return "", false
}

// PreserveTracing creates a new background context that carries over the
// tracing values (user ID, request ID) from the parent context without
// inheriting its cancellation or deadline. Used when webhook processing
// must outlive the HTTP request that delivered the event.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()
	if userID := GetUserID(ctx); userID != "" {
		newCtx = WithUserID(newCtx, userID)
	}
	if requestID, ok := GetRequestID(ctx); ok {
		newCtx = WithRequestID(newCtx, requestID)
	}
	return newCtx
}
