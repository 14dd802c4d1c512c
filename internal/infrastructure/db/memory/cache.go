// Package memory provides an in-process cache for development and tests.
package memory

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

const (
	defaultMaxCost     = 64 << 20
	defaultNumCounters = 1e5
)

// Cache implements ports.Cache on ristretto. Cost is the value size in bytes;
// an entry evicted under MaxCost reads back as a miss. Values are copied on
// the way in and out so callers cannot alias stored bytes.
type Cache struct {
	store *ristretto.Cache[string, []byte]
}

// NewCache creates a Cache holding at most maxCost bytes of values. A
// non-positive maxCost selects the 64 MiB default.
func NewCache(maxCost int64) (*Cache, error) {
	if maxCost <= 0 {
		maxCost = defaultMaxCost
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        defaultNumCounters,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &Cache{store: store}, nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set waits for ristretto's write buffer so a Get right after Set sees the
// value. A set dropped by the admission policy behaves like an eviction.
func (c *Cache) Set(_ context.Context, key string, value []byte) error {
	v := append([]byte(nil), value...)
	c.store.Set(key, v, int64(len(v))+1)
	c.store.Wait()
	return nil
}

func (c *Cache) FlushAll(_ context.Context) error {
	c.store.Clear()
	return nil
}

func (c *Cache) Ping(context.Context) error { return nil }

func (c *Cache) Close() {
	c.store.Close()
}
