// internal/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/metrics"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

const (
	cacheKeyPrefix  = "search:candidates:v1:"
	DefaultCacheTTL = 60 * time.Second
)

// CachedSource keeps per-kind candidate sets in Redis. It never caches
// scores or results, only raw records, and any Redis failure falls back to
// the wrapped source.
type CachedSource struct {
	next   Source
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next Source, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-cache"}),
	}
}

func cacheKey(kind search.Kind, limit int) string {
	return fmt.Sprintf("%s%s:%d", cacheKeyPrefix, kind, limit)
}

func (c *CachedSource) Fetch(ctx context.Context, kind search.Kind, limit int) ([]search.Record, error) {
	key := cacheKey(kind, limit)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var records []search.Record
		if jsonErr := json.Unmarshal([]byte(val), &records); jsonErr == nil {
			metrics.CandidateCache.WithLabelValues(string(kind), "hit").Inc()
			return records, nil
		}
		metrics.CandidateCache.WithLabelValues(string(kind), "error").Inc()
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
		metrics.CandidateCache.WithLabelValues(string(kind), "miss").Inc()
	default:
		metrics.CandidateCache.WithLabelValues(string(kind), "error").Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	records, err := c.next.Fetch(ctx, kind, limit)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(records)
	if err != nil {
		c.logger.Warn("failed to encode candidates for cache", map[string]interface{}{
			"kind":  kind,
			"error": err.Error(),
		})
		return records, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return records, nil
}

// Invalidate drops cached candidates for kinds, or for every kind when none
// are given. It returns the number of keys removed.
func (c *CachedSource) Invalidate(ctx context.Context, kinds ...search.Kind) (int64, error) {
	if len(kinds) == 0 {
		kinds = search.AllKinds
	}

	var removed int64
	for _, kind := range kinds {
		pattern := fmt.Sprintf("%s%s:*", cacheKeyPrefix, kind)
		var keys []string
		iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return removed, fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) == 0 {
			continue
		}
		n, err := c.redis.Del(ctx, keys...).Result()
		if err != nil {
			return removed, fmt.Errorf("delete %s keys: %w", kind, err)
		}
		removed += n
	}

	c.logger.Info("candidate cache invalidated", map[string]interface{}{
		"kinds":   kinds,
		"removed": removed,
	})
	return removed, nil
}
