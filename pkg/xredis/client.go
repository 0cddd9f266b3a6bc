package xredis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/manalab/backend/config"
	"github.com/redis/go-redis/v9"
)

// Client is the cache surface used by the read paths. Values are stored as json.
type Client interface {
	Del(ctx context.Context, key ...string) error
	SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error

	// GetObj returns redis.Nil if key does not exist.
	GetObj(ctx context.Context, key string, v any) error
}

type client struct {
	rdb *redis.Client
}

func NewClient(ctx context.Context, cfg config.RedisConfigs) (*client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		PoolSize:        cfg.PoolSize,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 256 * time.Millisecond,
		DialTimeout:     3 * time.Second,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &client{rdb: rdb}, nil
}

func (c *client) Close() error {
	return c.rdb.Close()
}

// Del ignores keys that are already gone.
func (c *client) Del(ctx context.Context, key ...string) error {
	if err := c.rdb.Del(ctx, key...).Err(); err != nil && err != redis.Nil {
		return err
	}

	return nil
}

func (c *client) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *client) GetObj(ctx context.Context, key string, v any) error {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(b, v)
}
