package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_GetMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)
	got, err := cache.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	c := &Cart{UserID: "u1", Items: []Item{{ProductID: "p1", ShopID: "s1", Price: 9.5, Quantity: 2}}}

	require.NoError(t, cache.Set(ctx, "u1", c))

	ttl := mr.TTL(cacheKey("u1"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")

	got, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, c.Items, got.Items)
}

func TestRedisCache_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	raw, _ := json.Marshal(&Cart{UserID: "u1"})
	require.NoError(t, mr.Set(cacheKey("u1"), string(raw[:5])))

	_, err := cache.Get(context.Background(), "u1")
	assert.ErrorContains(t, err, "unmarshal cart failed")
}

func TestRedisCache_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("u1"), "{}"))

	require.NoError(t, cache.Delete(context.Background(), "u1"))
	assert.False(t, mr.Exists(cacheKey("u1")))
	assert.NoError(t, cache.Delete(context.Background(), "u1"))
}
