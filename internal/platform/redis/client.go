// Package redis connects the reconciler lease store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storeops/internal/platform/config"
)

// Client embeds the go-redis client so lease code can call it directly.
type Client struct {
	*redis.Client
}

// New connects to REDIS_URL and pings it. It returns nil, nil when no URL is
// configured; the worker then sweeps without a lease.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	applyPool(opts, cfg)

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Client{Client: client}, nil
}

// applyPool overrides URL-derived settings with the non-zero config values.
func applyPool(opts *redis.Options, cfg config.RedisConfig) {
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
}

// Health is the readiness probe for /ready.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
