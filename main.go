package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Amund211/fetchonce/internal/adapters/cache"
	"github.com/Amund211/fetchonce/internal/adapters/itemprovider"
	"github.com/Amund211/fetchonce/internal/app"
	"github.com/Amund211/fetchonce/internal/config"
	"github.com/Amund211/fetchonce/internal/logging"
	"github.com/Amund211/fetchonce/internal/ports"
	"github.com/Amund211/fetchonce/internal/ratelimiting"
	"github.com/Amund211/fetchonce/internal/reporting"
	"github.com/Amund211/fetchonce/internal/telemetry"
	"github.com/Amund211/fetchonce/internal/tracking"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	// Root certificates for minimal container images
	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	concurrency := pflag.IntP("concurrency", "c", 0, "maximum number of fetches in flight (overrides FETCH_CONCURRENCY)")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	instanceID := uuid.New().String()
	logger := logging.NewLogger(os.Stderr, level).With("instanceID", instanceID)
	ctx := logging.AddToContext(context.Background(), logger)

	// Replaced once Sentry and telemetry are initialized. os.Exit skips deferred calls.
	flushSentry := func() {}
	shutdownTelemetry := func() {}

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		shutdownTelemetry()
		flushSentry()
		os.Exit(1)
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	if pflag.CommandLine.Changed("concurrency") {
		config, err = config.WithFetchConcurrency(*concurrency)
		if err != nil {
			fail("Invalid concurrency flag", "error", err.Error())
		}
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	sentryCtx, flush, err := reporting.NewSentryOrMock(ctx, config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	ctx = sentryCtx
	flushSentry = flush
	defer flush()
	logger.Info("Initialized Sentry")

	if config.TelemetryEnabled() {
		shutdown, err := telemetry.SetupOTelSDK(ctx, "fetchonce")
		if err != nil {
			fail("Failed to initialize OpenTelemetry", "error", err.Error())
		}
		shutdownTelemetry = telemetry.BoundedShutdown(shutdown, 5*time.Second, logger)
		defer shutdownTelemetry()
		logger.Info("Initialized OpenTelemetry")
	}

	httpClient := &http.Client{
		Timeout:   config.FetchTimeout(),
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	provider, err := itemprovider.NewItemsAPIOrMock(config, httpClient)
	if err != nil {
		fail("Failed to initialize items API", "error", err.Error())
	}
	logger.Info("Initialized items API")

	gate, err := ratelimiting.NewFetchGate(config.FetchConcurrency(), config.FetchRatePerSecond())
	if err != nil {
		fail("Failed to initialize fetch gate", "error", err.Error())
	}

	stats, err := app.NewStats()
	if err != nil {
		fail("Failed to initialize stats", "error", err.Error())
	}

	table := cache.NewTTLTable()
	tracker := tracking.NewTracker()
	sink := ports.NewLineSink(os.Stdout)

	getItemWithCache := app.BuildGetItemWithCache(table, gate, provider, stats)
	worker := app.BuildRequestWorker(getItemWithCache, sink, tracker, stats, time.Now)
	dispatcher := app.NewDispatcher(worker, tracker, stats, config.DrainTimeout())

	logger.Info("Init complete")
	snapshot, runErr := dispatcher.Run(ctx, os.Stdin)
	logger.Info("Input done", "cachedKeys", table.Len(), "outstanding", tracker.Outstanding())

	if err := ports.WriteReport(os.Stdout, snapshot); err != nil {
		logger.Error("Failed to write report", "error", err.Error())
	}

	if err := sink.Err(); err != nil {
		reporting.Report(ctx, err)
		fail("Failed to write output", "error", err.Error())
	}
	if runErr != nil {
		reporting.Report(ctx, runErr)
		fail("Failed to process input", "error", runErr.Error())
	}
}
