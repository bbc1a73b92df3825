// Redis client: pool, timeouts, Ping at startup; used for the rate limit
// and the active-shift cache.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"maqayees/internal/config"
)

// New creates a Redis client with pool and timeouts (Dial, Read, Write);
// Ping runs at startup.
func New(cfg config.Redis) (*redis.Client, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return cli, nil
}
