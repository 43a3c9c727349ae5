package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption configures a Redis cache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix     string
	defaultTTL time.Duration
}

// WithPrefix namespaces every key as "<prefix>:<key>". Clear only removes prefixed keys.
func WithPrefix(prefix string) RedisOption {
	return func(c *redisConfig) { c.prefix = prefix }
}

// WithRedisDefaultTTL sets the TTL used when Set receives zero. Default 5 minutes.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(c *redisConfig) { c.defaultTTL = d }
}

// Redis is a cache stored in Redis. The client is owned by the caller.
type Redis[V any] struct {
	client    redis.UniversalClient
	marshaler Marshaler[V]
	cfg       redisConfig
}

// NewRedis creates a Redis cache. A nil marshaler encodes values as JSON.
//
// Example:
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	tokens := cache.NewRedis[backends.Identity](client, nil, cache.WithPrefix("tokens"))
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	cfg := redisConfig{defaultTTL: 5 * time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}
	if m == nil {
		m = JSON[V]{}
	}
	return &Redis[V]{client: client, marshaler: m, cfg: cfg}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.marshaler.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.cfg.defaultTTL
	}
	// Redis treats 0 as "keep forever".
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

// Clear removes the prefixed keys with SCAN, or flushes the database without a prefix.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.cfg.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	iter := r.client.Scan(ctx, 0, r.cfg.prefix+":*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
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

// Close does nothing; close the client with pkg/redis.Shutdown.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	if r.cfg.prefix == "" {
		return key
	}
	return r.cfg.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)
