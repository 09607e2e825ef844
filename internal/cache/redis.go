package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// KeyPrefix namespaces every key this service writes to a shared Redis
const KeyPrefix = "anivise:"

// RedisCache is a Cache shared across instances. Redis enforces expiry itself;
// transport errors are logged and treated as misses since entries are cheap to recompute.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redisURL and verifies the connection
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func prefixed(key string) string {
	return KeyPrefix + key
}

// Get returns the value for key if Redis still holds it
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, prefixed(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("key", key).Warn("[CACHE] Redis get failed")
		}
		return nil, false
	}
	return data, true
}

// Set stores value with the given ttl
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := r.client.Set(ctx, prefixed(key), value, ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("[CACHE] Redis set failed")
	}
}

// Delete removes key unconditionally
func (r *RedisCache) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, prefixed(key)).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("[CACHE] Redis delete failed")
	}
}

// Ping checks if Redis is reachable
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection pool
func (r *RedisCache) Close() error {
	return r.client.Close()
}
