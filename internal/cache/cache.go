// internal/cache/cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	apperrors "scheme-advisor/internal/common/errors"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// Cache stores JSON encoded responses in Redis. A nil *Cache is valid and
// caches nothing.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	log    logger.Logger
}

func New(client redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		log:    log.WithFields(map[string]interface{}{"component": "response-cache"}),
	}
}

// Key builds "<prefix><name>:<digest>" where the digest covers every part,
// so free text of any length gives a short key.
func (c *Cache) Key(name string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	prefix := ""
	if c != nil {
		prefix = c.prefix
	}
	return prefix + name + ":" + hex.EncodeToString(sum[:8])
}

// Get decodes the cached value into dest. found is false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (found bool, err error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewCacheUnavailableError(err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, apperrors.NewCacheUnavailableError(err)
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}

// Remember returns the cached value for key or calls load and caches what it
// returns. Cache failures are logged and never reach the caller; load errors
// are returned and not cached.
func Remember[T any](ctx context.Context, c *Cache, key string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}

	var cached T
	found, err := c.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(resultError).Inc()
		c.log.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	case found:
		metrics.CacheLookups.WithLabelValues(resultHit).Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues(resultMiss).Inc()
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, key, value); err != nil {
		c.log.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return value, nil
}
