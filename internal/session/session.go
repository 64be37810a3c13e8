// Package session holds transient per-user conversation context: the last
// domain a user browsed, used to disambiguate bare numeric input.
package session

import (
	"sync"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
)

type entry struct {
	domainID int
	lastSeen time.Time
}

// Store is a bounded, TTL-expiring user context map. Entries idle longer
// than the TTL are dropped by Sweep; when the size cap is hit the least
// recently used entry is evicted. Both bounds keep a long-lived process from
// growing without limit under sustained multi-user load.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	max     int
	met     *metrics.Metrics

	now func() time.Time // swappable for tests
}

// NewStore creates a session store. met may be nil.
func NewStore(ttl time.Duration, max int, met *metrics.Metrics) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		max:     max,
		met:     met,
		now:     time.Now,
	}
}

// SetDomain records the user's current domain selection.
func (s *Store) SetDomain(userID string, domainID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[userID]; ok {
		e.domainID = domainID
		e.lastSeen = s.now()
		return
	}

	if s.max > 0 && len(s.entries) >= s.max {
		s.evictOldestLocked()
	}
	s.entries[userID] = &entry{domainID: domainID, lastSeen: s.now()}
	s.updateGaugeLocked()
}

// Domain returns the user's current domain, refreshing its idle timer.
func (s *Store) Domain(userID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return 0, false
	}
	if s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl {
		delete(s.entries, userID)
		s.updateGaugeLocked()
		return 0, false
	}
	e.lastSeen = s.now()
	return e.domainID, true
}

// Clear removes the user's context. Invoked when the user browses the full
// directory again.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	s.updateGaugeLocked()
}

// Sweep drops all expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.updateGaugeLocked()
	}
	return removed
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID = id
			oldest = e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}

func (s *Store) updateGaugeLocked() {
	if s.met != nil {
		s.met.SetSessionsActive(len(s.entries))
	}
}
