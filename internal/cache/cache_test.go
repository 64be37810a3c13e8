package cache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New("test", time.Minute, 10, nil)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}

	c.Set("k", "v")
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Errorf("Get(k) = %q, %v", got, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New("test", time.Minute, 10, nil)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set("k", "v")
	current = current.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
}

func TestOldestEviction(t *testing.T) {
	c := New("test", time.Hour, 3, nil)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
		current = current.Add(time.Second)
	}
	c.Set("k3", "v")

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("newest entry should be present")
	}
}

func TestSweep(t *testing.T) {
	c := New("test", time.Minute, 10, nil)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set("old", "v")
	current = current.Add(30 * time.Second)
	c.Set("fresh", "v")
	current = current.Add(45 * time.Second)

	if removed := c.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry should survive the sweep")
	}
}

func TestGetOrFill(t *testing.T) {
	c := New("test", time.Minute, 10, nil)

	var calls atomic.Int32
	fill := func() (string, error) {
		calls.Add(1)
		return "rendered", nil
	}

	got, err := c.GetOrFill("k", fill)
	if err != nil || got != "rendered" {
		t.Fatalf("GetOrFill = %q, %v", got, err)
	}
	got, err = c.GetOrFill("k", fill)
	if err != nil || got != "rendered" {
		t.Fatalf("second GetOrFill = %q, %v", got, err)
	}
	if calls.Load() != 1 {
		t.Errorf("fill ran %d times, want 1", calls.Load())
	}
}

func TestGetOrFillError(t *testing.T) {
	c := New("test", time.Minute, 10, nil)
	wantErr := errors.New("render failed")

	if _, err := c.GetOrFill("k", func() (string, error) { return "", wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("GetOrFill error = %v, want %v", err, wantErr)
	}
	// Failed fills are not cached.
	if _, ok := c.Get("k"); ok {
		t.Error("failed fill should not populate the cache")
	}
}

func TestGetOrFillConcurrent(t *testing.T) {
	c := New("test", time.Minute, 10, nil)

	var calls atomic.Int32
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got, err := c.GetOrFill("k", func() (string, error) {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				return "rendered", nil
			})
			if err != nil || got != "rendered" {
				t.Errorf("GetOrFill = %q, %v", got, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fill ran %d times under contention, want 1", calls.Load())
	}
}
