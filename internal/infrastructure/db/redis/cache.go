package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

const flushBatch = 100

// Cache implements ports.Cache on Redis. Every key is namespaced with prefix
// so FlushAll only removes this service's entries. Entries carry no TTL;
// Redis eviction under maxmemory is read back as a miss.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a Cache wrapping the given Redis client.
func NewCache(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: redis get %q: %w", domain.ErrCacheUnavailable, key, err)
	}
	return b, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %q: %w", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// FlushAll deletes every key under the prefix. Without a prefix the whole
// logical database is flushed.
func (c *Cache) FlushAll(ctx context.Context) error {
	if c.prefix == "" {
		if err := c.client.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("%w: redis flushdb: %w", domain.ErrCacheUnavailable, err)
		}
		return nil
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", flushBatch).Iterator()
	batch := make([]string, 0, flushBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == flushBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("%w: redis del: %w", domain.ErrCacheUnavailable, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: redis scan: %w", domain.ErrCacheUnavailable, err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("%w: redis del: %w", domain.ErrCacheUnavailable, err)
		}
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}
