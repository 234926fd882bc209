// Package cache implements a small keyed TTL cache used to avoid re-fetching
// Discord data on every request. Entries expire a fixed duration after the
// last write; there is no eviction beyond expiry since the key space is one
// entry per guild (or guild+user).
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Injected so tests can advance time
// deterministically instead of sleeping.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a process-local TTL cache. Reads at or past an entry's expiry are
// misses. Concurrent misses for the same key may both fetch and both write;
// last writer wins, which is acceptable because cached values are idempotent
// reads of external truth.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	now     Clock
}

// New creates a Store using the real clock.
func New[V any]() *Store[V] {
	return NewWithClock[V](time.Now)
}

// NewWithClock creates a Store with an injected clock.
func NewWithClock[V any](now Clock) *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		now:     now,
	}
}

// Get returns the cached value for key. The second return value is false when
// the key is absent or its entry has expired.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || !e.expiresAt.After(s.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any existing entry and extending
// the expiry window by ttl from now.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
}

// Delete removes key from the cache if present.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}
