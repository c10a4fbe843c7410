package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, CacheRepositoryInterface) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCacheRepository(client)
}

func TestRedisCacheRepository_SetGetDel(t *testing.T) {
	_, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "auth:role:user:1", "ADMIN", time.Minute))

	value, err := cache.Get(ctx, "auth:role:user:1")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", value)

	require.NoError(t, cache.Del(ctx, "auth:role:user:1"))
	_, err = cache.Get(ctx, "auth:role:user:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheRepository_Expiry(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheRepository_DelWithoutKeys(t *testing.T) {
	_, cache := newTestCache(t)
	assert.NoError(t, cache.Del(context.Background()))
}
