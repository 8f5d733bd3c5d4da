// Package ratelimit holds the counters behind the HTTP rate limiting middleware.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store counts hits per key inside fixed windows.
type Store interface {
	// Increment records a hit for key and returns the hit count of the current window
	// together with the time the window resets.
	Increment(ctx context.Context, key string) (int64, time.Time, error)
	// Decrement takes back one hit for key in the current window. It never goes below zero.
	Decrement(ctx context.Context, key string) error
}

type windowHits struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a Store local to the process. Expired windows are swept lazily.
type MemoryStore struct {
	mu        sync.Mutex
	window    time.Duration
	hits      map[string]*windowHits
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		window: window,
		hits:   make(map[string]*windowHits),
		now:    time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	h, ok := s.hits[key]
	if !ok || !now.Before(h.resetAt) {
		h = &windowHits{resetAt: now.Add(s.window)}
		s.hits[key] = h
	}
	h.count++
	return h.count, h.resetAt, nil
}

func (s *MemoryStore) Decrement(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hits[key]
	if ok && s.now().Before(h.resetAt) && h.count > 0 {
		h.count--
	}
	return nil
}

// sweep drops expired windows at most once per window. Caller holds mu.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.window {
		return
	}
	for key, h := range s.hits {
		if !now.Before(h.resetAt) {
			delete(s.hits, key)
		}
	}
	s.lastSweep = now
}
