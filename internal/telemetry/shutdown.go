package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Returns a func that runs shutdown once with a timeout and logs any failure.
// Safe to call from both a deferred cleanup and a fatal exit path.
func BoundedShutdown(shutdown func(context.Context) error, timeout time.Duration, logger *slog.Logger) func() {
	return sync.OnceFunc(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := shutdown(ctx); err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	})
}
