package catalog

import (
	"slices"
	"sync"
	"time"
)

// Snapshot holds the last-known-good copy of a collection fetched from the
// store. Each refresh takes a generation number; a result is applied only if
// no newer refresh has started since, so a slow fetch cannot overwrite a
// fresher one.
type Snapshot[T any] struct {
	mu        sync.RWMutex
	items     []T
	loaded    bool
	fetchedAt time.Time
	lastErr   error
	started   uint64
	applied   uint64
}

// State describes a snapshot read.
type State struct {
	Loaded    bool
	Stale     bool
	FetchedAt time.Time
	Err       error
}

// Begin starts a refresh and returns its generation.
func (s *Snapshot[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	return s.started
}

// Apply stores items fetched by the refresh with the given generation.
// It reports false when the result was discarded as stale.
func (s *Snapshot[T]) Apply(gen uint64, items []T, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.applied || gen < s.started {
		return false
	}
	s.items = slices.Clone(items)
	s.loaded = true
	s.fetchedAt = now
	s.lastErr = nil
	s.applied = gen
	return true
}

// Fail records a failed refresh. The previous items are kept.
func (s *Snapshot[T]) Fail(gen uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.applied || gen < s.started {
		return false
	}
	s.lastErr = err
	s.applied = gen
	return true
}

// Invalidate forces the next read to refresh.
func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchedAt = time.Time{}
}

// Items returns a copy of the current items and the snapshot state.
func (s *Snapshot[T]) Items() ([]T, State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), State{
		Loaded:    s.loaded,
		Stale:     s.lastErr != nil,
		FetchedAt: s.fetchedAt,
		Err:       s.lastErr,
	}
}

// Fresh reports whether the snapshot was loaded within maxAge of now and
// the last refresh succeeded.
func (s *Snapshot[T]) Fresh(now time.Time, maxAge time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded && s.lastErr == nil && !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < maxAge
}
