package cache

import "context"

// Store caches raw upstream payloads by key. RedisCache is the only
// implementation; a nil Store means no caching.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}
