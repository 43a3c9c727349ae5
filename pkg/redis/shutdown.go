package redis

import (
	"context"
	"io"
)

// Shutdown returns a hook closing the client, for pionia.ShutdownHook.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
