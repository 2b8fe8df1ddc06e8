package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"region-storefront/internal/catalog"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrStoreUnavailable is returned when nothing has ever been loaded and the
// document store cannot be reached.
var ErrStoreUnavailable = errors.New("document store unavailable")

// DefaultSnapshotTTL is how long a loaded snapshot is served before reads
// trigger a refresh.
const DefaultSnapshotTTL = 30 * time.Second

// refreshTimeout bounds a read-triggered refresh, which outlives the
// request that started it.
const refreshTimeout = 10 * time.Second

// snapshotLoader keeps a last-known-good copy of one collection. Concurrent
// read-triggered refreshes are collapsed into one store call.
type snapshotLoader[T any] struct {
	name     string
	fetch    func(ctx context.Context) ([]T, error)
	maxAge   time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
	snapshot catalog.Snapshot[T]
	group    singleflight.Group
}

func newSnapshotLoader[T any](name string, fetch func(context.Context) ([]T, error), maxAge time.Duration, logger *zap.Logger) *snapshotLoader[T] {
	if maxAge <= 0 {
		maxAge = DefaultSnapshotTTL
	}
	return &snapshotLoader[T]{
		name:    name,
		fetch:   fetch,
		maxAge:  maxAge,
		timeout: refreshTimeout,
		now:     time.Now,
		logger:  logger,
	}
}

// Refresh re-fetches the full collection.
func (l *snapshotLoader[T]) Refresh(ctx context.Context) error {
	gen := l.snapshot.Begin()

	items, err := l.fetch(ctx)
	if err != nil {
		l.snapshot.Fail(gen, err)
		return err
	}

	if !l.snapshot.Apply(gen, items, l.now()) {
		l.logger.Debug("Discarded stale snapshot result",
			zap.String("collection", l.name),
			zap.Uint64("generation", gen),
		)
	}
	return nil
}

// Load returns the current items, refreshing first when the snapshot is
// old. A failed refresh still returns the previous items, marked stale.
func (l *snapshotLoader[T]) Load(ctx context.Context) ([]T, catalog.State, error) {
	if !l.snapshot.Fresh(l.now(), l.maxAge) {
		_, err, _ := l.group.Do(l.name, func() (interface{}, error) {
			refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
			defer cancel()
			return nil, l.Refresh(refreshCtx)
		})
		if err != nil {
			items, state := l.snapshot.Items()
			if !state.Loaded {
				return nil, state, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
			}
			l.logger.Warn("Serving last known good snapshot",
				zap.String("collection", l.name),
				zap.Time("fetched_at", state.FetchedAt),
				zap.Error(err),
			)
			return items, state, nil
		}
	}

	items, state := l.snapshot.Items()
	return items, state, nil
}

// AfterWrite refreshes the snapshot after a successful mutation. A failed
// refresh is logged; the write itself already succeeded.
func (l *snapshotLoader[T]) AfterWrite(ctx context.Context) {
	l.snapshot.Invalidate()
	if err := l.Refresh(ctx); err != nil {
		l.logger.Warn("Failed to refresh snapshot after write",
			zap.String("collection", l.name),
			zap.Error(err),
		)
	}
}
