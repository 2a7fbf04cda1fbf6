package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Amund211/fetchonce/internal/logging"
	"github.com/Amund211/fetchonce/internal/strutils"
)

const EXIT_TOKEN = "exit"

// Upper bound on a single input token. Longer tokens are skipped and counted as rejected.
const MAX_TOKEN_SIZE = 1024 * 1024

type Dispatcher struct {
	worker       RequestWorker
	tracker      WorkTracker
	stats        *Stats
	drainTimeout time.Duration
}

// drainTimeout == 0 waits for outstanding requests forever
func NewDispatcher(worker RequestWorker, tracker WorkTracker, stats *Stats, drainTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		worker:       worker,
		tracker:      tracker,
		stats:        stats,
		drainTimeout: drainTimeout,
	}
}

// Run starts a worker for every key read from r until the exit token or the end of input,
// then waits for all workers to finish and returns the final statistics.
func (d *Dispatcher) Run(ctx context.Context, r io.Reader) (StatsSnapshot, error) {
	logger := logging.FromContext(ctx)

	scanner := newTokenScanner(bufio.NewScanner(r), MAX_TOKEN_SIZE)

	for scanner.Scan() {
		token := scanner.Text()
		if token == EXIT_TOKEN {
			logger.InfoContext(ctx, "Received exit token")
			break
		}

		if token == oversizedToken {
			d.stats.KeyRejected(ctx)
			logger.WarnContext(ctx, "Rejected oversized input token", "maxTokenSize", MAX_TOKEN_SIZE)
			continue
		}

		if err := strutils.ValidateKey(token); err != nil {
			d.stats.KeyRejected(ctx)
			logger.WarnContext(ctx, "Rejected input token", "token", fmt.Sprintf("%.64s", token), "error", err.Error())
			continue
		}

		d.stats.KeyAccepted(ctx)
		d.tracker.Begin()
		go d.worker(ctx, token)
	}

	var readErr error
	if err := scanner.Err(); err != nil {
		readErr = fmt.Errorf("failed to read input: %w", err)
		logger.ErrorContext(ctx, "Stopped reading input", "error", err.Error())
	}

	logger.InfoContext(ctx, "Draining outstanding requests")
	drainErr := d.drain(ctx)

	return d.stats.Snapshot(), errors.Join(readErr, drainErr)
}

func (d *Dispatcher) drain(ctx context.Context) error {
	if d.drainTimeout <= 0 {
		d.tracker.Drain()
		return nil
	}

	drainCtx, cancel := context.WithTimeout(ctx, d.drainTimeout)
	defer cancel()
	if err := d.tracker.DrainContext(drainCtx); err != nil {
		return fmt.Errorf("failed to drain outstanding requests: %w", err)
	}
	return nil
}
