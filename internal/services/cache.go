package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL keeps hot profiles around without serving stale counters for long
	DefaultCacheTTL = 10 * time.Minute
	// MaxCacheTTL caps any caller-provided TTL
	MaxCacheTTL = time.Hour
)

// CacheService is a JSON read-through cache in Redis. Without a Redis client
// every lookup is a miss and writes are dropped.
type CacheService struct{}

// Get retrieves a value from cache
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if database.RedisClient == nil {
		return false
	}
	val, err := database.RedisClient.Get(ctx, CacheKeyPrefix+key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		zap.L().Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores a value in cache with the default TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) {
	c.SetWithTTL(ctx, key, value, DefaultCacheTTL)
}

// SetWithTTL stores a value with a TTL clamped to MaxCacheTTL
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if database.RedisClient == nil {
		return
	}
	if ttl <= 0 || ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := database.RedisClient.Set(ctx, CacheKeyPrefix+key, data, ttl).Err(); err != nil {
		zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes values from cache
func (c *CacheService) Delete(ctx context.Context, keys ...string) {
	if database.RedisClient == nil || len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = CacheKeyPrefix + k
	}
	database.RedisClient.Del(ctx, prefixed...)
}

// DeletePrefix evicts every entry whose key starts with prefix. It walks the
// keyspace with SCAN so Redis is never blocked by a KEYS call.
func (c *CacheService) DeletePrefix(ctx context.Context, prefix string) error {
	if database.RedisClient == nil {
		return nil
	}
	iter := database.RedisClient.Scan(ctx, 0, CacheKeyPrefix+prefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := database.RedisClient.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return database.RedisClient.Del(ctx, batch...).Err()
	}
	return nil
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

// InvalidateProfileCache evicts cached profile views.
func InvalidateProfileCache(ctx context.Context, ids ...primitive.ObjectID) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, CacheKey("profile", id.Hex()))
	}
	Cache.Delete(ctx, keys...)
}

// Global cache service instance
var Cache = &CacheService{}
