package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/99minutos/secure-blog/internal/core/ports"
)

// cacheFormatVersion is stamped on every entry. Entries written with any
// other version are read as misses.
const cacheFormatVersion = 1

type cacheEntry[T any] struct {
	Version  int       `json:"v"`
	CachedAt time.Time `json:"cached_at"`
	Value    T         `json:"value"`
}

type rawCacheEntry struct {
	Version  int             `json:"v"`
	CachedAt time.Time       `json:"cached_at"`
	Value    json.RawMessage `json:"value"`
}

// getCached loads key from cache and decodes it into a T. Undecodable or
// foreign-version entries report found=false with a nil error; only backend
// failures return an error.
func getCached[T any](ctx context.Context, cache ports.Cache, key string) (value T, cachedAt time.Time, found bool, err error) {
	data, ok, err := cache.Get(ctx, key)
	if err != nil || !ok {
		return value, cachedAt, false, err
	}

	var raw rawCacheEntry
	if jsonErr := json.Unmarshal(data, &raw); jsonErr != nil || raw.Version != cacheFormatVersion {
		return value, cachedAt, false, nil
	}
	if jsonErr := json.Unmarshal(raw.Value, &value); jsonErr != nil {
		var zero T
		return zero, cachedAt, false, nil
	}
	return value, raw.CachedAt, true, nil
}

// putCached overwrites key with value stamped with cachedAt.
func putCached[T any](ctx context.Context, cache ports.Cache, key string, value T, cachedAt time.Time) error {
	data, err := json.Marshal(cacheEntry[T]{
		Version:  cacheFormatVersion,
		CachedAt: cachedAt,
		Value:    value,
	})
	if err != nil {
		return err
	}
	return cache.Set(ctx, key, data)
}
