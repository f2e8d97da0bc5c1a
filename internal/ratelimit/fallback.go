package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FallbackStore is a process-local CounterStore with the same fixed-window
// semantics as the shared stores. It never fails.
type FallbackStore struct {
	mu      sync.Mutex
	entries map[string]*windowCounter
	now     func() time.Time
}

type windowCounter struct {
	count     int64
	expiresAt time.Time
}

// NewFallbackStore creates an empty store.
func NewFallbackStore() *FallbackStore {
	return &FallbackStore{
		entries: make(map[string]*windowCounter),
		now:     time.Now,
	}
}

// Increment implements CounterStore.
func (s *FallbackStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := s.entries[key]
	if entry == nil || !now.Before(entry.expiresAt) {
		entry = &windowCounter{expiresAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, entry.expiresAt.Sub(now), nil
}

// CleanupExpired implements Sweeper.
func (s *FallbackStore) CleanupExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed int64
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of tracked keys.
func (s *FallbackStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Name implements CounterStore.
func (s *FallbackStore) Name() string { return "memory" }
