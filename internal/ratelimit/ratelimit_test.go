package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesTokens(t *testing.T) {
	l := New(3, 0.001) // effectively no refill during the test

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if l.Allow() {
		t.Error("request beyond burst should be rejected")
	}
}

func TestRefill(t *testing.T) {
	l := New(1, 1000) // refills almost instantly

	if !l.Allow() {
		t.Fatal("first request should pass")
	}
	time.Sleep(5 * time.Millisecond)
	if !l.Allow() {
		t.Error("bucket should have refilled")
	}
}

func TestWaitAcquiresToken(t *testing.T) {
	l := New(1, 100)
	_ = l.Allow() // drain

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := l.Wait(ctx); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	l := New(1, 0.0001) // refill far slower than the test
	_ = l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("Wait() should fail when the context expires first")
	}
}

func TestReset(t *testing.T) {
	l := New(1, 0.001)
	_ = l.Allow()

	l.Reset()
	if !l.Allow() {
		t.Error("Allow() should pass after Reset()")
	}
}
