// Package cache provides typed key-value caches with TTL support.
//
// Memory keeps entries in process with optional LRU bounds; Redis stores
// JSON-encoded values under a key prefix. Both implement Cache[V].
//
// GetOrSet loads a value on a miss and collapses concurrent misses for the same
// key into a single call, which keeps token lookups and other expensive reads
// from stampeding the database.
//
//	identities := cache.NewRedis[backends.Identity](client, nil, cache.WithPrefix("auth"))
//	id, err := cache.GetOrSet(ctx, identities, key, func(ctx context.Context) (backends.Identity, time.Duration, error) {
//	    id, err := lookup(ctx, token)
//	    return id, 5 * time.Minute, err
//	})
//
// TTL passed to Set: positive expires after the duration, zero uses the cache
// default, negative never expires.
package cache
