package ratelimiting

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var ErrInvalidCapacity = errors.New("invalid fetch gate capacity")
var ErrInvalidRate = errors.New("invalid fetch gate rate")

// FetchGate bounds how many fetches may be in flight at once, across all keys.
//
// Waiters are admitted in the order they arrived. An optional token bucket additionally
// limits how often new fetches may start.
type FetchGate struct {
	slots    *semaphore.Weighted
	limiter  *rate.Limiter
	capacity int

	inFlight atomic.Int64
}

// ratePerSecond == 0 disables the rate limit. The burst size equals the capacity.
func NewFetchGate(capacity int, ratePerSecond float64) (*FetchGate, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if ratePerSecond < 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRate, ratePerSecond)
	}

	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), capacity)
	}

	return &FetchGate{
		slots:    semaphore.NewWeighted(int64(capacity)),
		limiter:  limiter,
		capacity: capacity,
	}, nil
}

func (g *FetchGate) Capacity() int {
	return g.capacity
}

// Number of slots currently held
func (g *FetchGate) InFlight() int64 {
	return g.inFlight.Load()
}

// Acquire blocks until a slot is available and the rate limit (if any) allows a new fetch.
// On error no slot is held.
func (g *FetchGate) Acquire(ctx context.Context) error {
	if err := g.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire fetch slot: %w", err)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.slots.Release(1)
			return fmt.Errorf("failed to wait for fetch rate limit: %w", err)
		}
	}

	g.inFlight.Add(1)
	return nil
}

func (g *FetchGate) Release() {
	g.inFlight.Add(-1)
	g.slots.Release(1)
}

// Run the operation while holding a slot. Returns an error without running the operation if
// no slot could be acquired.
func (g *FetchGate) Limit(ctx context.Context, operation func(ctx context.Context)) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()

	operation(ctx)
	return nil
}
