package port

import (
	"context"
	"time"
)

// CacheRepository backs the HTTP response cache. Implementations are free to
// evict early; callers must treat every Get as best effort.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}
