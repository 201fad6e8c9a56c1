package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// compareAndSwapScript sets KEYS[1] to ARGV[2] (or deletes it when ARGV[4] is
// "1") only while it still holds ARGV[1]. ARGV[3] is the TTL in milliseconds.
var compareAndSwapScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		if ARGV[4] == "1" then
			redis.call("DEL", KEYS[1])
		elseif tonumber(ARGV[3]) > 0 then
			redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
		else
			redis.call("SET", KEYS[1], ARGV[2])
		end
		return 1
	else
		return 0
	end
`)

// RedisConfig holds connection settings for RedisCache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisCache implements Cache on Redis. Every key is namespaced under the
// configured prefix so Clear only touches this application's entries.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache connects and pings before returning.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "jersey"
	}

	return &RedisCache{client: client, keyPrefix: keyPrefix}, nil
}

func (r *RedisCache) key(k string) string {
	return r.keyPrefix + ":" + k
}

// Get retrieves a value by key.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores a value with the given TTL. Zero means no expiry.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

// Delete removes a value by key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Exists checks if a key exists in Redis.
func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetOrSet retrieves a value or computes and stores it if missing.
func (r *RedisCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	value, err := r.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	value, err = fn()
	if err != nil {
		return nil, err
	}

	if err := r.Set(ctx, key, value, ttl); err != nil {
		return nil, err
	}
	return value, nil
}

// CompareAndSwap runs the swap atomically server side.
func (r *RedisCache) CompareAndSwap(ctx context.Context, key string, expected, next []byte, ttl time.Duration) (bool, error) {
	del := "0"
	if next == nil {
		del = "1"
	}
	n, err := compareAndSwapScript.Run(ctx, r.client, []string{r.key(key)},
		expected, next, ttl.Milliseconds(), del).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Clear deletes every key under the prefix.
func (r *RedisCache) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.keyPrefix+":*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Name returns "redis".
func (r *RedisCache) Name() string { return "redis" }

// Close closes the client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ Cache = (*RedisCache)(nil)
