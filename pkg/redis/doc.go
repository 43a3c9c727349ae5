// Package redis connects the Redis client used by pkg/cache and the token auth backend.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	app := pionia.New(
//	    pionia.WithHealthChecks(pionia.WithReadinessCheck("redis", redis.Healthcheck(client))),
//	)
//	return app.Run(":8080", pionia.ShutdownHook(redis.Shutdown(client)))
//
// Config carries env and yaml tags so it loads with pkg/config.
package redis
