// Package cache keeps per-query rankings in Redis so a repeated run over an
// unchanged corpus skips re-scoring. Keys are derived from the corpus
// fingerprint, so editing any document invalidates every entry implicitly.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/redis"
)

const keyPrefix = "ranking:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache is the executor's ranking cache backed by a Store.
type QueryCache struct {
	client  Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache. m may be nil.
func New(client Store, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		ttl:     cfg.CacheTTL,
		metrics: m,
		logger:  slog.Default().With("component", "ranking-cache"),
	}
}

// Get looks key up. Backend and decoding failures are logged and reported
// as a miss.
func (c *QueryCache) Get(ctx context.Context, key string) (*executor.SearchResult, bool) {
	redisKey := buildKey(key)
	data, err := c.client.Get(ctx, redisKey)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", redisKey, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", redisKey, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	c.metrics.CacheHit()
	c.logger.Debug("cache hit", "key", redisKey)
	return &result, true
}

// Set stores result under key with the configured TTL. Failures are logged.
func (c *QueryCache) Set(ctx context.Context, key string, result *executor.SearchResult) {
	redisKey := buildKey(key)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", redisKey, "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKey, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", redisKey, "error", err)
	}
}

// GetOrCompute returns the cached result for key or computes and stores it.
// Concurrent callers for the same key share one computation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	key string,
	compute func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate removes every cached ranking.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counts since creation.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	c.metrics.CacheMiss()
}

func buildKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
