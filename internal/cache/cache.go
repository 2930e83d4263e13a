// Package cache memoizes search responses per catalog version.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/windguide/internal/models"
)

const keyPrefix = "windguide:search:"

// ErrUnknownBackend is returned for an unrecognized cache backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Store is a byte-oriented key/value store with eviction of its own choosing.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Flush removes every key this store owns.
	Flush(ctx context.Context) error
	Close() error
}

// QueryCache caches search responses in a Store. Concurrent misses for the same
// key are collapsed into one computation.
type QueryCache struct {
	store  Store
	group  singleflight.Group
	logger *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New wraps store. A nil logger discards log output.
func New(store Store, logger *zap.Logger) *QueryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryCache{store: store, logger: logger.With(zap.String("component", "query-cache"))}
}

// Key derives the cache key for a query against one catalog version. The query is
// lower-cased and trimmed the same way the ranker treats it.
func Key(version string, q models.SearchQuery) string {
	normalized := strings.ToLower(strings.TrimSpace(q.Query))
	raw := fmt.Sprintf("%s|%s|limit=%d|group=%t|suggest=%t", version, normalized, q.Limit, q.GroupBySection, q.Suggest)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// Get returns the cached response for key. Store errors count as misses.
func (c *QueryCache) Get(ctx context.Context, key string) (*models.SearchResponse, bool) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	if err != nil || !ok {
		c.misses.Add(1)
		return nil, false
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("cache unmarshal failed", zap.String("key", key), zap.Error(err))
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &resp, true
}

// Set stores resp under key. Failures are logged, not returned.
func (c *QueryCache) Set(ctx context.Context, key string, resp *models.SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOrCompute returns the cached response for key or computes and stores it.
// cached reports whether the response came from the store.
func (c *QueryCache) GetOrCompute(ctx context.Context, key string, compute func() (*models.SearchResponse, error)) (resp *models.SearchResponse, cached bool, err error) {
	if resp, ok := c.Get(ctx, key); ok {
		return resp, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		resp, err := compute()
		if err != nil {
			return nil, err
		}
		// Shared with every waiter, so the first caller's cancellation must not skip the write.
		c.Set(context.WithoutCancel(ctx), key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*models.SearchResponse), false, nil
}

// Invalidate drops every cached response.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	if err := c.store.Flush(ctx); err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated")
	return nil
}

// Stats returns hit and miss counts since creation.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close closes the underlying store.
func (c *QueryCache) Close() error {
	return c.store.Close()
}

// Open builds the store named by backend. "none" and "" return a nil store.
func Open(ctx context.Context, backend string, size int, ttl time.Duration, redisOpts RedisOptions) (Store, error) {
	switch strings.ToLower(backend) {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(size, ttl), nil
	case "redis":
		redisOpts.TTL = ttl
		return NewRedisStore(ctx, redisOpts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
