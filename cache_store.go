package walletsec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheEntry is the persisted shape of one cached response. Timestamp is the
// insertion time in Unix milliseconds; expiry and staleness are derived by
// the fetcher, never stored.
type cacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type cacheStore struct {
	redis  *redis.Client
	prefix string
}

func newCacheStore(redisClient *redis.Client, prefix string) *cacheStore {
	return &cacheStore{redis: redisClient, prefix: prefix}
}

func (s *cacheStore) key(k string) string {
	return s.prefix + k
}

// Get returns the stored entry for key, or nil when absent. A malformed
// stored value is deleted and reported as absent, never as an error.
func (s *cacheStore) Get(ctx context.Context, key string) (*cacheEntry, error) {
	data, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Data == nil {
		_, _ = s.redis.Del(ctx, s.key(key)).Result()
		return nil, nil
	}
	return &entry, nil
}

// Set stores data under key with the given insertion time.
func (s *cacheStore) Set(ctx context.Context, key string, data json.RawMessage, at time.Time) error {
	entry := cacheEntry{
		Data:      data,
		Timestamp: at.UnixMilli(),
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(key), encoded, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Clear deletes the entry for key.
func (s *cacheStore) Clear(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
