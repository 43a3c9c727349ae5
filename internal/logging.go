package internal

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/pionia/pkg/logger"
)

type targetKey struct{}

// target is the service and action a request was dispatched to.
type target struct {
	service string
	action  string
}

// TargetExtractor returns a log extractor adding the dispatched service and action
// as a "target" group to every entry logged with the request context.
func TargetExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		t, ok := ctx.Value(targetKey{}).(target)
		if !ok || (t.service == "" && t.action == "") {
			return slog.Attr{}, false
		}
		return slog.Group("target",
			slog.String("service", t.service),
			slog.String("action", t.action),
		), true
	}
}
