// internal/infrastructure/database/redis/connection.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zodak/storefront-api/internal/config"
)

// Client wraps the go-redis client with connection lifecycle helpers.
// Domain code receives the underlying *redis.Client via GetClient; the
// wrapper only exists for bootstrap and health checks.
type Client struct {
	rdb *redis.Client
}

// NewConnection dials Redis with the configured pool settings and
// verifies the connection with a ping before returning.
func NewConnection(cfg *config.Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient exposes the underlying go-redis client.
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Health pings the server.
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
