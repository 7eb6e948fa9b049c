/* Copyright 2025 Mnemo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ratelimit implements a fixed-window request counter keyed by
// (subject, resource). It is a best-effort abuse guard: bursts are possible
// at window boundaries, and the in-memory store neither survives restarts
// nor scales across instances. Multi-instance deployments should supply a
// Store backed by a shared cache.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/mnemo/mnemo/pkg/clock"
)

// Entry is the counter state for one (subject, resource) key within the
// current window.
type Entry struct {
	Count   int
	ResetAt time.Time
}

// Store holds rate-limit entries. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the entry under the given key
	Get(key string) (Entry, bool)
	// Set replaces the entry under the given key
	Set(key string, entry Entry)
	// Increment adds 1 to the count of an existing entry and returns the
	// updated entry. It reports false if no entry exists.
	Increment(key string) (Entry, bool)
	// Take atomically records one request under the given key. When no
	// window is live relative to now, it starts a fresh one ending at
	// resetAt with count 1. It returns the resulting entry, reporting false
	// with the entry unchanged when the live window has reached limit.
	// The whole read-check-write must be one critical section.
	Take(key string, limit int, now, resetAt time.Time) (Entry, bool)
}

// MemoryStore is a mutex-guarded in-process Store for single-instance
// deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

// Get returns the entry under the given key
func (s *MemoryStore) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Set replaces the entry under the given key
func (s *MemoryStore) Set(key string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry
}

// Increment adds 1 to the count of an existing entry
func (s *MemoryStore) Increment(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}

	entry.Count++
	s.entries[key] = entry

	return entry, true
}

// Take atomically records one request under the given key
func (s *MemoryStore) Take(key string, limit int, now, resetAt time.Time) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !entry.ResetAt.After(now) {
		// first request in a window: replace, never merge
		entry = Entry{Count: 1, ResetAt: resetAt}
		s.entries[key] = entry
		return entry, true
	}

	if entry.Count >= limit {
		return entry, false
	}

	entry.Count++
	s.entries[key] = entry

	return entry, true
}

// Error indicates that the budget for a key is exhausted. ResetAt is when
// the window rolls over and requests are accepted again.
type Error struct {
	ResetAt time.Time
}

func (e Error) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// Limiter counts requests per (subject, resource) within a fixed window
type Limiter struct {
	store  Store
	clock  clock.Clock
	limit  int
	window time.Duration
}

// NewLimiter creates a Limiter allowing limit requests per window
func NewLimiter(store Store, c clock.Clock, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		clock:  c,
		limit:  limit,
		window: window,
	}
}

func limiterKey(subject, resource string) string {
	return fmt.Sprintf("%s:%s", subject, resource)
}

// Check records one request for the given subject and resource. It returns
// an Error carrying the window reset time once the budget is exhausted.
func (l *Limiter) Check(subject, resource string) error {
	now := l.clock.Now()

	entry, ok := l.store.Take(limiterKey(subject, resource), l.limit, now, now.Add(l.window))
	if !ok {
		return Error{ResetAt: entry.ResetAt}
	}

	return nil
}

// Remaining returns how many requests are left in the current window. It is
// consistent with the last Check call for the same key.
func (l *Limiter) Remaining(subject, resource string) int {
	entry, ok := l.store.Get(limiterKey(subject, resource))
	if !ok || !entry.ResetAt.After(l.clock.Now()) {
		return l.limit
	}

	remaining := l.limit - entry.Count
	if remaining < 0 {
		return 0
	}

	return remaining
}

// ResetAt returns when the current window for the given key expires. If
// there is no live window, it reports the reset time a request made now
// would get.
func (l *Limiter) ResetAt(subject, resource string) time.Time {
	now := l.clock.Now()

	entry, ok := l.store.Get(limiterKey(subject, resource))
	if !ok || !entry.ResetAt.After(now) {
		return now.Add(l.window)
	}

	return entry.ResetAt
}

// Limit returns the per-window request budget
func (l *Limiter) Limit() int {
	return l.limit
}
