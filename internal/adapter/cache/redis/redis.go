package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"todoapi/internal/core/port"
)

// Cache is a redis-backed CacheRepository. Keys are shared across
// instances, so the response cache stays coherent behind a load balancer.
type Cache struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (port.CacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Info().Str("addr", addr).Msg("connected to redis")

	return &Cache{client: client}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return value, true, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()

		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}

		cursor = next
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}
