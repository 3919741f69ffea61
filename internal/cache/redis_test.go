package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsennguyen/gofoody/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client), mr
}

func TestGet_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	_, err := cache.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetThenGet(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	summary := &domain.CartSummary{
		Subtotal:      decimal.RequireFromString("55.48"),
		TotalQuantity: 5,
	}
	require.NoError(t, cache.Set(ctx, 1, summary))

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalQuantity)
	assert.True(t, got.Subtotal.Equal(summary.Subtotal))
}

func TestSet_AppliesTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, cache.Set(context.Background(), 1, &domain.CartSummary{}))

	ttl := mr.TTL(cacheKey(1))
	assert.GreaterOrEqual(t, ttl, cache.baseTTL)
}

func TestGet_CorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, mr.Set(cacheKey(1), "not json"))

	_, err := cache.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	data, _ := json.Marshal(&domain.CartSummary{TotalQuantity: 3})
	require.NoError(t, mr.Set(cacheKey(7), string(data)))

	require.NoError(t, cache.Delete(ctx, 7))

	_, err := cache.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// deleting an absent key is fine
	assert.NoError(t, cache.Delete(ctx, 7))
}

func TestKeysAreScopedPerUser(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 1, &domain.CartSummary{TotalQuantity: 1}))
	require.NoError(t, cache.Set(ctx, 2, &domain.CartSummary{TotalQuantity: 2}))

	got, err := cache.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalQuantity)
}
