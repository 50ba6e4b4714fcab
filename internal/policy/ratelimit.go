package policy

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CounterStore increments a windowed counter and returns the new count.
// The increment and the window expiry must be atomic so concurrent
// callers sharing a key cannot race past the limit.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter backs the limiter with Redis INCR plus a first-hit TTL.
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter creates a RedisCounter.
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// MemoryCounter is the in-process fallback for development and tests.
type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryCounter creates a MemoryCounter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{buckets: make(map[string]*bucket)}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	b, ok := c.buckets[key]
	if !ok || now.After(b.expiresAt) {
		b = &bucket{expiresAt: now.Add(window)}
		c.buckets[key] = b
	}
	b.count++
	return b.count, nil
}

// RateLimiter is an approximate fixed-window limiter: one counter per
// key, expiring window seconds after the first hit. Cheap and good
// enough; this is deliberately not a token bucket.
type RateLimiter struct {
	store       CounterStore
	maxAttempts int64
	window      time.Duration
	logger      *zap.Logger
}

// NewRateLimiter creates a limiter over the given counter store.
func NewRateLimiter(store CounterStore, maxAttempts int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		store:       store,
		maxAttempts: int64(maxAttempts),
		window:      window,
		logger:      logger,
	}
}

// Allow records one attempt under the key and reports whether the caller
// is still within the window. Counter store failures fail open: a broken
// limiter backend must not take the whole tool surface down.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	count, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		l.logger.Warn("rate limit counter unavailable, failing open",
			zap.String("key", key),
			zap.Error(err),
		)
		return true
	}
	return count <= l.maxAttempts
}

// RateKey builds the counter key for one invocation scope.
func RateKey(tool, action string, mode Mode, principalID string) string {
	return strings.Join([]string{"toolgate:rate", tool, action, string(mode), principalID}, ":")
}
