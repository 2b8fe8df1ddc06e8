package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	listKeyPrefix    = "docstore:list:"
	versionKeyPrefix = "docstore:version:"
)

// DefaultListTTL bounds how long a cached collection listing is served.
const DefaultListTTL = 5 * time.Minute

type cachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps next with a Redis cache of List results. Listings
// are keyed by a per-collection version that every write bumps, so a fill
// that raced a write lands under a version nobody reads again. Cache
// failures are logged and fall through to next.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) Store {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &cachedStore{Store: next, client: client, ttl: ttl, logger: logger}
}

func (s *cachedStore) List(ctx context.Context, collection string) ([]Record, error) {
	// The version must be read before the backend so a write landing in
	// between always moves readers off the key filled below.
	version, err := s.version(ctx, collection)
	if err != nil {
		s.logger.Warn("Document list cache version error", zap.String("collection", collection), zap.Error(err))
		return s.Store.List(ctx, collection)
	}
	key := listKey(collection, version)

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var records []Record
		if err := json.Unmarshal(raw, &records); err == nil {
			s.logger.Debug("Document list cache hit", zap.String("collection", collection))
			return records, nil
		}
		s.logger.Warn("Discarding unreadable cached list", zap.String("collection", collection))
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("Document list cache get error", zap.String("collection", collection), zap.Error(err))
	}

	records, err := s.Store.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(records); err == nil {
		if err := s.client.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
			s.logger.Warn("Document list cache set error", zap.String("collection", collection), zap.Error(err))
		}
	}
	return records, nil
}

func (s *cachedStore) Set(ctx context.Context, collection, id string, doc Document) error {
	defer s.invalidate(ctx, collection)
	return s.Store.Set(ctx, collection, id, doc)
}

func (s *cachedStore) Update(ctx context.Context, collection, id string, patch Document) error {
	defer s.invalidate(ctx, collection)
	return s.Store.Update(ctx, collection, id, patch)
}

func (s *cachedStore) Delete(ctx context.Context, collection, id string) error {
	defer s.invalidate(ctx, collection)
	return s.Store.Delete(ctx, collection, id)
}

func (s *cachedStore) version(ctx context.Context, collection string) (int64, error) {
	v, err := s.client.Get(ctx, versionKeyPrefix+collection).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// invalidate runs after the backend write. A List that read the backend
// before the write committed also read the version this bumps.
func (s *cachedStore) invalidate(ctx context.Context, collection string) {
	ctx = context.WithoutCancel(ctx)
	version, err := s.client.Incr(ctx, versionKeyPrefix+collection).Result()
	if err != nil {
		s.logger.Warn("Document list cache invalidate error", zap.String("collection", collection), zap.Error(err))
		return
	}
	if err := s.client.Del(ctx, listKey(collection, version-1)).Err(); err != nil {
		s.logger.Debug("Document list cache cleanup error", zap.String("collection", collection), zap.Error(err))
	}
}

func listKey(collection string, version int64) string {
	return listKeyPrefix + collection + ":" + strconv.FormatInt(version, 10)
}
