package memory

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"todoapi/internal/core/port"
)

// Cache is an in-process CacheRepository for single-instance deployments
// and tests.
type Cache struct {
	store *gocache.Cache
}

func New() port.CacheRepository {
	return &Cache{store: gocache.New(5*time.Minute, 10*time.Minute)}
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, found := c.store.Get(key)

	if !found {
		return nil, false, nil
	}

	return value.([]byte), true, nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *Cache) DeleteByPrefix(_ context.Context, prefix string) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}

	return nil
}

func (c *Cache) Close() error {
	c.store.Flush()
	return nil
}
