package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Suitable for a
// single instance; multi-instance deployments should use the redis store.
type MemoryStore struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

// NewMemoryStore creates a memory store with the given dedup window.
func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Seen reports whether the tuple was marked within the window and marks it.
func (s *MemoryStore) Seen(_ context.Context, actorID, action, module string) (bool, error) {
	k := key(actorID, action, module)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.seen[k]; ok && now.Sub(last) < s.window {
		return true, nil
	}
	s.seen[k] = now
	s.gc(now)
	return false, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// gc drops expired tuples. Called with the lock held; the map stays small
// because the window is short.
func (s *MemoryStore) gc(now time.Time) {
	for k, last := range s.seen {
		if now.Sub(last) >= s.window {
			delete(s.seen, k)
		}
	}
}
