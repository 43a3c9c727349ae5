package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Healthcheck returns a readiness probe for pionia.WithReadinessCheck.
// A PING that does not answer PONG counts as a failure.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		pong, err := client.Ping(ctx).Result()
		switch {
		case err != nil:
			return errors.Join(ErrHealthcheckFailed, err)
		case pong != "PONG":
			return errors.Join(ErrHealthcheckFailed, errors.New("redis: unexpected ping reply "+pong))
		}
		return nil
	}
}
