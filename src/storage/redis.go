package storage

import (
	"context"
	"errors"
	"fmt"
	"restaurant_chat/src/model"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultReportTTL = 5 * time.Minute
	reportPrefix     = "report:"
)

// RedisCache keeps computed report results in Redis so they survive a
// restart and can be shared by several API processes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects using config.URL and checks the connection
func NewRedisCache(ctx context.Context, config model.RedisConfig) (*RedisCache, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}

	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (r *RedisCache) key(name string) string {
	return reportPrefix + name
}

// Set stores value under name for the cache TTL
func (r *RedisCache) Set(ctx context.Context, name string, value any) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal report data: %w", err)
	}

	if err := r.client.Set(ctx, r.key(name), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report data: %w", err)
	}
	return nil
}

// Get decodes the value stored under name into dest. A miss returns
// false with no error.
func (r *RedisCache) Get(ctx context.Context, name string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, r.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get report data: %w", err)
	}

	if err := sonic.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal report data: %w", err)
	}
	return true, nil
}

// Delete removes name from the cache
func (r *RedisCache) Delete(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, r.key(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete report data: %w", err)
	}
	return nil
}

// Ping tests Redis connection
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
