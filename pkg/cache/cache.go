package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a typed key-value cache.
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// Marshaler converts values for byte-oriented backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSON is the default Marshaler.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSON[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var loads singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or stores the result of fn.
// Concurrent misses on the same cache and key share one call to fn.
// Errors from fn are returned and nothing is cached.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	// Flights are scoped to the cache instance so equal keys in caches
	// of different value types never share a result.
	res, err, _ := loads.Do(fmt.Sprintf("%p:%s", c, key), func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		// Write failures are ignored; the loaded value is still returned.
		_ = c.Set(ctx, key, val, ttl)
		return loaded[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(loaded[V]).val, nil
}
