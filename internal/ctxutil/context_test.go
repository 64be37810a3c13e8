package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestUserID(t *testing.T) {
	ctx := context.Background()

	if got := GetUserID(ctx); got != "" {
		t.Errorf("GetUserID on empty context = %q, want empty", got)
	}

	ctx = WithUserID(ctx, "919876543210")
	if got := GetUserID(ctx); got != "919876543210" {
		t.Errorf("GetUserID = %q, want %q", got, "919876543210")
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetRequestID(ctx); ok {
		t.Error("GetRequestID on empty context should return ok=false")
	}

	ctx = WithRequestID(ctx, "wamid.abc123")
	got, ok := GetRequestID(ctx)
	if !ok || got != "wamid.abc123" {
		t.Errorf("GetRequestID = %q, %v, want %q, true", got, ok, "wamid.abc123")
	}
}

func TestEmptyValuesIgnored(t *testing.T) {
	ctx := WithUserID(context.Background(), "")
	if got := GetUserID(ctx); got != "" {
		t.Errorf("empty user ID should not be retrievable, got %q", got)
	}
}

func TestPreserveTracing(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	parent = WithUserID(parent, "919876543210")
	parent = WithRequestID(parent, "req-1")

	preserved := PreserveTracing(parent)

	if got := GetUserID(preserved); got != "919876543210" {
		t.Errorf("preserved user ID = %q, want %q", got, "919876543210")
	}
	if got, ok := GetRequestID(preserved); !ok || got != "req-1" {
		t.Errorf("preserved request ID = %q, %v", got, ok)
	}
	if _, hasDeadline := preserved.Deadline(); hasDeadline {
		t.Error("preserved context should not inherit deadline")
	}
}
