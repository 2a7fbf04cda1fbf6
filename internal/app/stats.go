package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type StatsSnapshot struct {
	KeysAccepted    int64
	FetchesExecuted int64
	FetchesFailed   int64
	CacheHits       int64
	FailedRequests  int64
	RejectedKeys    int64
}

type statsMetricsCollection struct {
	keysAccepted    metric.Int64Counter
	fetchesExecuted metric.Int64Counter
	fetchesFailed   metric.Int64Counter
	cacheHits       metric.Int64Counter
	failedRequests  metric.Int64Counter
	rejectedKeys    metric.Int64Counter
}

func setupStatsMetrics(meter metric.Meter) (statsMetricsCollection, error) {
	counter := func(name, description string) (metric.Int64Counter, error) {
		c, err := meter.Int64Counter(name, metric.WithDescription(description))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", name, err)
		}
		return c, nil
	}

	var metrics statsMetricsCollection
	var err error
	if metrics.keysAccepted, err = counter("app/keys_accepted", "Keys accepted from input"); err != nil {
		return statsMetricsCollection{}, err
	}
	if metrics.fetchesExecuted, err = counter("app/fetches_executed", "Fetches sent to the item provider"); err != nil {
		return statsMetricsCollection{}, err
	}
	if metrics.fetchesFailed, err = counter("app/fetches_failed", "Fetches that returned an error"); err != nil {
		return statsMetricsCollection{}, err
	}
	if metrics.cacheHits, err = counter("app/cache_hits", "Requests answered from the cache"); err != nil {
		return statsMetricsCollection{}, err
	}
	if metrics.failedRequests, err = counter("app/failed_requests", "Requests that were answered without a value"); err != nil {
		return statsMetricsCollection{}, err
	}
	if metrics.rejectedKeys, err = counter("app/rejected_keys", "Input tokens rejected as invalid keys"); err != nil {
		return statsMetricsCollection{}, err
	}
	return metrics, nil
}

// Stats holds the process-wide counters. Safe for concurrent use.
type Stats struct {
	keysAccepted    atomic.Int64
	fetchesExecuted atomic.Int64
	fetchesFailed   atomic.Int64
	cacheHits       atomic.Int64
	failedRequests  atomic.Int64
	rejectedKeys    atomic.Int64

	metrics statsMetricsCollection
}

func NewStats() (*Stats, error) {
	metrics, err := setupStatsMetrics(otel.Meter("fetchonce/app"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}
	return &Stats{metrics: metrics}, nil
}

func (s *Stats) KeyAccepted(ctx context.Context) {
	s.keysAccepted.Add(1)
	s.metrics.keysAccepted.Add(ctx, 1)
}

func (s *Stats) KeyRejected(ctx context.Context) {
	s.rejectedKeys.Add(1)
	s.metrics.rejectedKeys.Add(ctx, 1)
}

func (s *Stats) FetchExecuted(ctx context.Context, failed bool) {
	s.fetchesExecuted.Add(1)
	s.metrics.fetchesExecuted.Add(ctx, 1)
	if failed {
		s.fetchesFailed.Add(1)
		s.metrics.fetchesFailed.Add(ctx, 1)
	}
}

func (s *Stats) CacheHit(ctx context.Context) {
	s.cacheHits.Add(1)
	s.metrics.cacheHits.Add(ctx, 1)
}

func (s *Stats) RequestFailed(ctx context.Context) {
	s.failedRequests.Add(1)
	s.metrics.failedRequests.Add(ctx, 1)
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		KeysAccepted:    s.keysAccepted.Load(),
		FetchesExecuted: s.fetchesExecuted.Load(),
		FetchesFailed:   s.fetchesFailed.Load(),
		CacheHits:       s.cacheHits.Load(),
		FailedRequests:  s.failedRequests.Load(),
		RejectedKeys:    s.rejectedKeys.Load(),
	}
}
