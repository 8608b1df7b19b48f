package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/observability/metrics"
	"github.com/vietddude/goodnews/internal/serving/cache"
)

const cachePrefix = "goodnews:cache:"

// Cache stores resolved record lists in Redis. Expiry is native; Redis
// drops the key lazily on read once the TTL passes. Redis errors are
// logged and degrade to a miss.
type Cache struct {
	client *Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewCache creates a Redis-backed cache with the given TTL.
func NewCache(client *Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		log:    slog.Default().With("component", "redis_cache"),
	}
}

// Key helper
func cacheKey(key string) string {
	return cachePrefix + key
}

func (c *Cache) Get(ctx context.Context, key string) ([]domain.ClassifiedRecord, bool) {
	data, err := c.client.rdb.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		c.log.Warn("Cache get failed", "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}

	var records []domain.ClassifiedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		c.log.Warn("Dropping undecodable cache entry", "key", key, "error", err)
		_ = c.client.rdb.Del(ctx, cacheKey(key)).Err()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return records, true
}

func (c *Cache) Set(ctx context.Context, key string, records []domain.ClassifiedRecord) {
	data, err := json.Marshal(records)
	if err != nil {
		c.log.Warn("Cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.rdb.Set(ctx, cacheKey(key), data, c.ttl).Err(); err != nil {
		c.log.Warn("Cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.client.rdb.Del(ctx, cacheKey(key)).Err(); err != nil {
		c.log.Warn("Cache invalidate failed", "key", key, "error", err)
	}
}

func (c *Cache) Clear(ctx context.Context) {
	keys, err := c.scan(ctx)
	if err != nil {
		c.log.Warn("Cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("Cache clear failed", "error", err)
	}
}

func (c *Cache) Status(ctx context.Context) cache.Status {
	keys, err := c.scan(ctx)
	if err != nil {
		c.log.Warn("Cache scan failed", "error", err)
		return cache.Status{Keys: []string{}}
	}

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strings.TrimPrefix(k, cachePrefix)
	}
	sort.Strings(out)
	return cache.Status{Size: len(out), Keys: out}
}

func (c *Cache) scan(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := c.client.rdb.Scan(ctx, cursor, cachePrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

var _ cache.Cache = (*Cache)(nil)
