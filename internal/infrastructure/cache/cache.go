package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
)

// ErrMiss is the sentinel for an absent key, so callers can tell a miss from
// a transport failure.
var ErrMiss = errors.New(errors.CodeCacheError, "cache miss")

// Cache is a thin JSON-over-Redis helper with a shared key prefix and a
// default TTL. Values are marshalled with encoding/json.
type Cache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	logger     logging.Logger
}

// New builds a Cache. An empty prefix stores keys verbatim; a zero ttl means
// entries do not expire unless Set is called with an explicit TTL.
func New(client *redis.Client, prefix string, defaultTTL time.Duration, logger logging.Logger) *Cache {
	return &Cache{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
		logger:     logger.Named("cache"),
	}
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Get unmarshals the stored value into out. Returns ErrMiss when the key is
// absent.
func (c *Cache) Get(ctx context.Context, key string, out any) error {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "cache get failed")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "cache value decode failed")
	}
	return nil
}

// Set stores the value under the key. A zero ttl falls back to the default.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "cache value encode failed")
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "cache set failed")
	}
	return nil
}

// Delete removes the keys. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "cache delete failed")
	}
	return nil
}

// GetOrSet reads through the cache: on a miss it invokes load, stores the
// result, and unmarshals it into out. Store failures are logged, not
// returned; a flaky cache must not fail the read path.
func (c *Cache) GetOrSet(ctx context.Context, key string, out any, ttl time.Duration, load func(ctx context.Context) (any, error)) error {
	err := c.Get(ctx, key, out)
	if err == nil {
		return nil
	}
	if err != ErrMiss {
		c.logger.Warn("cache read failed, falling through", logging.String("key", key), logging.Err(err))
	}

	value, err := load(ctx)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("cache fill failed", logging.String("key", key), logging.Err(err))
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "cache value encode failed")
	}
	return json.Unmarshal(raw, out)
}

// Ping verifies connectivity, used by the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "redis ping failed")
	}
	return nil
}
