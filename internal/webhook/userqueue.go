package webhook

import (
	"context"
	"sync"
)

// userQueue serializes message processing per sender. When a user
// double-sends, the second message waits for the first to clear so the
// replies cannot interleave. This is cooperative advisory locking, not a
// hard mutex: a waiter gives up when its context expires.
type userQueue struct {
	mu       sync.Mutex
	inflight map[string]chan struct{}
}

func newUserQueue() *userQueue {
	return &userQueue{
		inflight: make(map[string]chan struct{}),
	}
}

// acquire blocks until no other task for key is in flight, then marks
// key as busy. Returns ctx.Err() if the wait is abandoned.
func (q *userQueue) acquire(ctx context.Context, key string) error {
	for {
		q.mu.Lock()
		ch, busy := q.inflight[key]
		if !busy {
			q.inflight[key] = make(chan struct{})
			q.mu.Unlock()
			return nil
		}
		q.mu.Unlock()

		select {
		case <-ch:
			// Holder finished; race for the slot again.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// release marks key as free and wakes all waiters.
func (q *userQueue) release(key string) {
	q.mu.Lock()
	if ch, ok := q.inflight[key]; ok {
		close(ch)
		delete(q.inflight, key)
	}
	q.mu.Unlock()
}
