// Package cache stores generated text so repeated requests skip the model.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/jgoulah/envirolink/internal/config"
)

const keyPrefix = "envirolink:insight:"

// Redis is a TTL cache backed by a Redis server
type Redis struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedis creates a cache from config. It does not connect until first use.
func NewRedis(cfg *config.Config) *Redis {
	addr := cfg.Redis.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	return &Redis{
		client: redisclient.NewClient(&redisclient.Options{
			Addr:         addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		}),
		ttl: cfg.GetCacheTTL(),
	}
}

// Get returns the cached value for key. A miss is not an error.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redisclient.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key for the configured TTL
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}
	return nil
}

// Ping checks the server is reachable
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
