package session

import (
	"fmt"
	"testing"
	"time"
)

func TestSetAndGetDomain(t *testing.T) {
	s := NewStore(time.Minute, 100, nil)

	if _, ok := s.Domain("919876543210"); ok {
		t.Error("unknown user should have no domain")
	}

	s.SetDomain("919876543210", 3)
	if got, ok := s.Domain("919876543210"); !ok || got != 3 {
		t.Errorf("Domain() = %d, %v, want 3, true", got, ok)
	}

	// Overwritten on next selection.
	s.SetDomain("919876543210", 5)
	if got, _ := s.Domain("919876543210"); got != 5 {
		t.Errorf("Domain() after overwrite = %d, want 5", got)
	}
}

func TestClear(t *testing.T) {
	s := NewStore(time.Minute, 100, nil)
	s.SetDomain("u1", 2)
	s.Clear("u1")

	if _, ok := s.Domain("u1"); ok {
		t.Error("cleared user should have no domain")
	}
}

func TestTTLExpiry(t *testing.T) {
	s := NewStore(time.Minute, 100, nil)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	s.SetDomain("u1", 1)
	current = current.Add(2 * time.Minute)

	if _, ok := s.Domain("u1"); ok {
		t.Error("expired entry should not be returned")
	}
	if s.Len() != 0 {
		t.Errorf("expired entry should be deleted on read, Len() = %d", s.Len())
	}
}

func TestReadRefreshesIdleTimer(t *testing.T) {
	s := NewStore(time.Minute, 100, nil)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	s.SetDomain("u1", 1)
	current = current.Add(40 * time.Second)
	if _, ok := s.Domain("u1"); !ok {
		t.Fatal("entry should still be live")
	}
	current = current.Add(40 * time.Second)
	if _, ok := s.Domain("u1"); !ok {
		t.Error("read should have refreshed the idle timer")
	}
}

func TestSweep(t *testing.T) {
	s := NewStore(time.Minute, 100, nil)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	s.SetDomain("old", 1)
	current = current.Add(30 * time.Second)
	s.SetDomain("fresh", 2)
	current = current.Add(45 * time.Second)

	if removed := s.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, ok := s.Domain("fresh"); !ok {
		t.Error("fresh entry should survive the sweep")
	}
}

func TestBoundedEviction(t *testing.T) {
	s := NewStore(time.Hour, 3, nil)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		s.SetDomain(fmt.Sprintf("u%d", i), i+1)
		current = current.Add(time.Second)
	}
	// Cap reached: the oldest entry (u0) is evicted for the newcomer.
	s.SetDomain("u3", 4)

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if _, ok := s.Domain("u0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := s.Domain("u3"); !ok {
		t.Error("newest entry should be present")
	}
}
