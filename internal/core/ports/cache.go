package ports

import "context"

// Cache is a byte-oriented key/value store. Callers own serialization.
//
// Get reports found=false on a miss; an eviction by the backend is
// indistinguishable from a key that was never set. Backend failures are
// returned wrapped in domain.ErrCacheUnavailable.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	FlushAll(ctx context.Context) error
	Ping(ctx context.Context) error
}
