package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/fetchonce/internal/adapters/cache"
	"github.com/Amund211/fetchonce/internal/app"
	"github.com/Amund211/fetchonce/internal/domain"
	"github.com/Amund211/fetchonce/internal/ratelimiting"
	"github.com/Amund211/fetchonce/internal/tracking"
	"github.com/stretchr/testify/require"
)

type mockedItemProvider struct {
	mu      sync.Mutex
	calls   map[string]int
	delay   time.Duration
	failOn  map[string]error
	release chan struct{}
}

func newMockedItemProvider() *mockedItemProvider {
	return &mockedItemProvider{
		calls:  make(map[string]int),
		failOn: make(map[string]error),
	}
}

func (p *mockedItemProvider) GetItem(ctx context.Context, key string) (string, error) {
	p.mu.Lock()
	p.calls[key]++
	err := p.failOn[key]
	release := p.release
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return "", err
	}
	return key + "-VALUE", nil
}

func (p *mockedItemProvider) callsFor(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[key]
}

func (p *mockedItemProvider) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, calls := range p.calls {
		total += calls
	}
	return total
}

type collectingSink struct {
	mu    sync.Mutex
	items []domain.Item
}

func (s *collectingSink) Emit(item domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

func (s *collectingSink) Items() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Item(nil), s.items...)
}

func (s *collectingSink) countFor(key string) int {
	count := 0
	for _, item := range s.Items() {
		if item.Key == key {
			count++
		}
	}
	return count
}

func newStats(t *testing.T) *app.Stats {
	t.Helper()
	stats, err := app.NewStats()
	require.NoError(t, err)
	return stats
}

func newGate(t *testing.T, capacity int) *ratelimiting.FetchGate {
	t.Helper()
	gate, err := ratelimiting.NewFetchGate(capacity, 0)
	require.NoError(t, err)
	return gate
}

type pipeline struct {
	provider *mockedItemProvider
	sink     *collectingSink
	stats    *app.Stats
	tracker  *tracking.Tracker
	getItem  app.GetItemWithCache
	worker   app.RequestWorker
}

func newPipeline(t *testing.T, capacity int) *pipeline {
	t.Helper()

	provider := newMockedItemProvider()
	sink := &collectingSink{}
	stats := newStats(t)
	tracker := tracking.NewTracker()

	getItem := app.BuildGetItemWithCache(cache.NewTTLTable(), newGate(t, capacity), provider, stats)
	worker := app.BuildRequestWorker(getItem, sink, tracker, stats, time.Now)

	return &pipeline{
		provider: provider,
		sink:     sink,
		stats:    stats,
		tracker:  tracker,
		getItem:  getItem,
		worker:   worker,
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	stats := newStats(t)
	ctx := t.Context()

	stats.KeyAccepted(ctx)
	stats.KeyAccepted(ctx)
	stats.KeyRejected(ctx)
	stats.FetchExecuted(ctx, false)
	stats.FetchExecuted(ctx, true)
	stats.CacheHit(ctx)
	stats.RequestFailed(ctx)

	require.Equal(t, app.StatsSnapshot{
		KeysAccepted:    2,
		FetchesExecuted: 2,
		FetchesFailed:   1,
		CacheHits:       1,
		FailedRequests:  1,
		RejectedKeys:    1,
	}, stats.Snapshot())
}
