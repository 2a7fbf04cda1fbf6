package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/Amund211/fetchonce/internal/domain"
	"github.com/Amund211/fetchonce/internal/logging"
	"github.com/Amund211/fetchonce/internal/reporting"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Sink interface {
	Emit(item domain.Item)
}

type WorkTracker interface {
	Begin()
	End()
	Drain()
	DrainContext(ctx context.Context) error
}

// RequestWorker handles a single admitted key. It must be run after the key has been
// registered with the tracker, and ends the tracked work when it returns.
type RequestWorker func(ctx context.Context, key string)

func BuildRequestWorker(getItem GetItemWithCache, sink Sink, tracker WorkTracker, stats *Stats, nowFunc func() time.Time) RequestWorker {
	tracer := otel.Tracer("fetchonce/app")

	return func(ctx context.Context, key string) {
		defer tracker.End()

		ctx, span := tracer.Start(ctx, "RequestWorker", trace.WithAttributes(attribute.String("key", key)))
		defer span.End()

		ctx = reporting.WithRequestScope(ctx, key, nowFunc())
		ctx = logging.AddMetaToContext(ctx,
			slog.String("key", key),
			slog.String("requestID", uuid.NewString()),
		)

		item, err := getItem(ctx, key)
		if err != nil {
			stats.RequestFailed(ctx)
			logging.FromContext(ctx).WarnContext(ctx, "Failed to get item", "error", err.Error())
		}

		sink.Emit(item)
	}
}
