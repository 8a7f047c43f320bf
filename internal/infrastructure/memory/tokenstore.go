// Package memory holds the process-local stores backing verification state.
// Nothing here survives a restart, and nothing is shared between processes:
// running several replicas requires routing every identity to one of them.
package memory

import (
	"context"
	"sync"
	"time"
)

// Lookup is the result of a ConsumeIf call.
type Lookup int

const (
	// Consumed means the entry matched and was removed.
	Consumed Lookup = iota
	// Missing means no entry exists under the key.
	Missing
	// Expired means the entry existed but its TTL had elapsed. It was removed.
	Expired
	// Rejected means the entry is live but did not match. It was kept.
	Rejected
)

type item[T any] struct {
	value     T
	expiresAt time.Time
}

// TokenStore is a mutex-guarded map of short-lived entries. Expiry is lazy on
// read; Sweep (or Run) drops entries that were never read again.
type TokenStore[T any] struct {
	mu    sync.Mutex
	items map[string]item[T]
	nowF  func() time.Time
}

// NewTokenStore returns an empty store. A nil now uses time.Now.
func NewTokenStore[T any](now func() time.Time) *TokenStore[T] {
	if now == nil {
		now = time.Now
	}
	return &TokenStore[T]{items: make(map[string]item[T]), nowF: now}
}

// Put stores value under key for ttl, replacing any previous entry.
func (s *TokenStore[T]) Put(key string, value T, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = item[T]{value: value, expiresAt: s.nowF().Add(ttl)}
}

// Take removes the entry under key and returns it if it was still live.
func (s *TokenStore[T]) Take(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[key]
	delete(s.items, key)
	if !ok || s.expired(it) {
		var zero T
		return zero, false
	}
	return it.value, true
}

// Peek reports whether a live entry exists under key without consuming it.
func (s *TokenStore[T]) Peek(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[key]
	return ok && !s.expired(it)
}

// ConsumeIf looks up key and removes it only when match returns true. An
// expired entry is removed and reported as Expired. The whole check runs
// under the store lock, so two callers can never both consume one entry.
func (s *TokenStore[T]) ConsumeIf(key string, match func(T) bool) (T, Lookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	it, ok := s.items[key]
	if !ok {
		return zero, Missing
	}
	if s.expired(it) {
		delete(s.items, key)
		return zero, Expired
	}
	if !match(it.value) {
		return zero, Rejected
	}
	delete(s.items, key)
	return it.value, Consumed
}

// Len returns the number of stored entries, expired ones included.
func (s *TokenStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *TokenStore[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, it := range s.items {
		if s.expired(it) {
			delete(s.items, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *TokenStore[T]) Run(ctx context.Context, interval time.Duration) {
	runSweeper(ctx, interval, s.Sweep)
}

func (s *TokenStore[T]) expired(it item[T]) bool {
	return s.nowF().After(it.expiresAt)
}

func runSweeper(ctx context.Context, interval time.Duration, sweep func() int) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sweep()
		}
	}
}
