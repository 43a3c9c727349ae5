package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options converts cfg into client options without connecting.
func Options(cfg Config) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = cfg.MaxIdleTime
	opts.ConnMaxLifetime = cfg.MaxLifetime
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Connect creates a client and pings it, retrying while Redis comes up.
//
// Example:
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	tokens := cache.NewRedis[backends.Identity](client, nil, cache.WithPrefix("tokens"))
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := range max(cfg.RetryAttempts, 1) {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}
