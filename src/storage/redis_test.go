package storage

import (
	"context"
	"os"
	"restaurant_chat/src/model"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCacheRequiresURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), model.RedisConfig{})
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), model.RedisConfig{URL: "not-a-redis-url"})
	assert.ErrorContains(t, err, "failed to parse REDIS_URL")
}

func TestRedisCacheRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	cache, err := NewRedisCache(ctx, model.RedisConfig{URL: url, TTL: time.Minute})
	require.NoError(t, err)
	defer cache.Close()

	name := "test:" + uuid.NewString()
	defer cache.Delete(ctx, name)

	type total struct {
		Total int `json:"total"`
	}

	var miss total
	found, err := cache.Get(ctx, name, &miss)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, name, total{Total: 42}))

	var got total
	found, err = cache.Get(ctx, name, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 42, got.Total)
}
