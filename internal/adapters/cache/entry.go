package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Entry is the cached state for a single key.
//
// The value is set at most once and never changes afterwards. The mutex is held by the caller
// performing the fetch, which makes concurrent callers for the same key wait for its result.
type Entry struct {
	key string

	mu      sync.Mutex
	value   string
	valid   bool
	lastErr error

	// Completed fetch attempts. Read without the lock to detect attempts that finished while
	// waiting for it.
	attempts atomic.Uint64
}

func newEntry(key string) *Entry {
	return &Entry{key: key}
}

func (e *Entry) Key() string {
	return e.key
}

// Returns the resolved value, or false if the entry has not been resolved
func (e *Entry) Value() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value, e.valid
}

type FetchFunc func(ctx context.Context, key string) (string, error)

type Gate interface {
	Limit(ctx context.Context, operation func(ctx context.Context)) error
}

// Resolve returns the value for the entry, fetching it if it has not been resolved yet.
//
// Returns value, fetched, error. fetched is true if this call invoked fetch.
//
// At most one fetch runs per entry at a time, and callers that waited on a fetch share its
// result, including its failure. A failed fetch leaves the entry unresolved, so a later call
// will try again.
func Resolve(ctx context.Context, entry *Entry, gate Gate, fetch FetchFunc) (string, bool, error) {
	seenAttempts := entry.attempts.Load()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.valid {
		return entry.value, false, nil
	}

	if entry.attempts.Load() != seenAttempts && entry.lastErr != nil {
		// The fetch we were waiting on failed
		return "", false, entry.lastErr
	}

	var (
		fetched  bool
		data     string
		fetchErr error
	)
	err := gate.Limit(ctx, func(ctx context.Context) {
		fetched = true
		data, fetchErr = fetch(ctx, entry.key)
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to pass fetch gate: %w", err)
	}
	if !fetched {
		panic("logic error: gate did not run the fetch")
	}

	entry.attempts.Add(1)

	if fetchErr != nil {
		entry.lastErr = fmt.Errorf("failed to fetch %s: %w", entry.key, fetchErr)
		return "", true, entry.lastErr
	}

	entry.value = data
	entry.valid = true
	entry.lastErr = nil

	return data, true, nil
}
