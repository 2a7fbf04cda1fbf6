package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/Amund211/fetchonce/internal/config"
	"github.com/Amund211/fetchonce/internal/logging"
	"github.com/getsentry/sentry-go"
)

var uuidRx = regexp.MustCompile(`[0-9a-f]{8}-?([0-9a-f]{4}-?){3}[0-9a-f]{12}`)
var hostRx = regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`)
var itemKeyRx = regexp.MustCompile(`/items/[A-Za-z0-9._~-]+`)

func sanitizeError(err string) string {
	err = uuidRx.ReplaceAllString(err, "<uuid>")
	err = hostRx.ReplaceAllString(err, "<host>")
	err = itemKeyRx.ReplaceAllString(err, "/items/<key>")
	return err
}

func Report(ctx context.Context, err error, extras ...map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	logger := logging.FromContext(ctx)
	if hub == nil {
		logger.WarnContext(ctx, "Failed to get Sentry hub from context", "error", err, "extras", extras)
		return
	}

	logger.ErrorContext(
		ctx,
		"Reporting error to Sentry",
		slog.String("error", err.Error()),
		slog.Any("extras", extras),
	)

	hub.WithScope(func(scope *sentry.Scope) {
		meta := MetaFromContext(ctx)
		scope.SetTags(meta.tags)
		for key, value := range meta.extras {
			scope.SetExtra(key, value)
		}
		if !meta.startedAt.IsZero() {
			scope.SetExtra("secondsSinceStart", time.Since(meta.startedAt).Seconds())
		}

		for _, extra := range extras {
			if extra == nil {
				continue
			}
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}

		if err == nil {
			err = errors.New("No error provided")
		}

		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}

// Give the request its own Sentry scope tagged with the key, and record when it started
func WithRequestScope(ctx context.Context, key string, startedAt time.Time) context.Context {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		ctx = sentry.SetHubOnContext(ctx, hub.Clone())
	}

	ctx = AddTagsToContext(ctx, map[string]string{"key": key})
	return setStartedAtInContext(ctx, startedAt)
}

// Initialize the global Sentry client and attach its hub to the context
func InitSentry(ctx context.Context, sentryDSN string) (context.Context, func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDSN,
		EnableTracing:    true,
		TracesSampleRate: 1.0 / 100.0,
	})
	if err != nil {
		return nil, nil, err
	}

	flush := func() {
		sentry.Flush(5 * time.Second)
	}

	return sentry.SetHubOnContext(ctx, sentry.CurrentHub()), flush, nil
}

func NewSentryOrMock(ctx context.Context, config config.Config) (context.Context, func(), error) {
	if config.SentryDSN() != "" {
		return InitSentry(ctx, config.SentryDSN())
	}

	if config.IsDevelopment() {
		// Report will fall back to logging when there is no hub in the context
		flush := func() {}
		return ctx, flush, nil
	}

	return nil, nil, fmt.Errorf("Missing Sentry DSN in non-development environment")
}
