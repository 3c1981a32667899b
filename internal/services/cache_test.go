package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useRedis points the package at an in-memory Redis for the test's lifetime.
func useRedis(t testing.TB) *miniredis.Miniredis {
	t.Helper()
	srv := miniredis.RunT(t)
	prev := database.RedisClient
	database.RedisClient = redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		database.RedisClient.Close()
		database.RedisClient = prev
	})
	return srv
}

func TestCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()

	t.Run("without redis", func(t *testing.T) {
		prev := database.RedisClient
		database.RedisClient = nil
		defer func() { database.RedisClient = prev }()
		assert.NoError(t, Cache.DeletePrefix(ctx, "profile:"))
	})

	t.Run("evicts only the prefix", func(t *testing.T) {
		srv := useRedis(t)
		for i := 0; i < 450; i++ {
			Cache.Set(ctx, CacheKey("profile", fmt.Sprint(i)), map[string]int{"follower_count": i})
		}
		Cache.Set(ctx, CacheKey("orchestration", "daily"), "keep")
		require.NoError(t, srv.Set("session:abc", "keep"))

		require.NoError(t, Cache.DeletePrefix(ctx, "profile:"))
		assert.ElementsMatch(t, []string{"cache:orchestration:daily", "session:abc"}, srv.Keys())
	})
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := useRedis(t)

	Cache.SetWithTTL(ctx, "k", map[string]string{"a": "b"}, 0)
	assert.Equal(t, MaxCacheTTL, srv.TTL("cache:k"))

	var got map[string]string
	require.True(t, Cache.Get(ctx, "k", &got))
	assert.Equal(t, "b", got["a"])

	require.NoError(t, srv.Set("cache:bad", "{"))
	assert.False(t, Cache.Get(ctx, "bad", &got))

	Cache.Delete(ctx, "k")
	assert.False(t, Cache.Get(ctx, "k", &got))
}
