package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmaster/internal/pkg/cache"
)

func newTestCache(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewFromRedis(rdb), mr
}

func TestRedisClient_GetSetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "produto:1")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "produto:1", `{"id":"1"}`, time.Minute))
	val, err := c.Get(ctx, "produto:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, val)

	require.NoError(t, c.Delete(ctx, "produto:1", "inexistente"))
	_, err = c.Get(ctx, "produto:1")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestRedisClient_Counters(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetInt(ctx, "rate-limit:1.2.3.4")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "rate-limit:1.2.3.4", 1, time.Minute))
	n, err := c.Incr(ctx, "rate-limit:1.2.3.4")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := c.GetInt(ctx, "rate-limit:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	mr.FastForward(2 * time.Minute)
	_, err = c.GetInt(ctx, "rate-limit:1.2.3.4")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestJSONHelpers(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type item struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	var got item
	hit, err := cache.GetJSON(ctx, c, "item:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.SetJSON(ctx, c, "item:1", item{ID: "1", Name: "Rack A"}, time.Minute))
	hit, err = cache.GetJSON(ctx, c, "item:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Rack A", got.Name)
}
