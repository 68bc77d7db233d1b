package metrics

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/m-lab/mlab-metrics-api/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

// Cache is an optional redis response cache for metric lookups. A nil *Cache
// disables caching entirely; every method is nil-safe.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// OpenCacheFromEnv builds a Cache from REDIS_ADDR / REDIS_PASSWORD /
// REDIS_TTL_SECONDS. Returns nil when REDIS_ADDR is unset.
func OpenCacheFromEnv() *Cache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}

	ttl := time.Hour
	if s := os.Getenv("REDIS_TTL_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}

	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		}),
		ttl: ttl,
	}
}

// LookupKey builds the cache key for one metric lookup.
func LookupKey(name string, year, month int, locale string) string {
	return fmt.Sprintf("metric:%s:%d-%02d:%s", name, year, month, locale)
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	body, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		telemetry.CacheMissesTotal.Inc()
		return nil, false
	}
	telemetry.CacheHitsTotal.Inc()
	return body, true
}

func (c *Cache) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	// Best effort; a failed write only costs the next reader a DB roundtrip.
	_ = c.rdb.Set(ctx, key, body, c.ttl).Err()
}

// Invalidate drops every cached lookup for the given metric.
func (c *Cache) Invalidate(ctx context.Context, name string) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("metric:%s:*", name), 0).Iterator()
	for iter.Next(ctx) {
		_ = c.rdb.Del(ctx, iter.Val()).Err()
	}
}
