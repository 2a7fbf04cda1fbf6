package ports

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Amund211/fetchonce/internal/app"
	"github.com/Amund211/fetchonce/internal/domain"
)

const ABSENT_VALUE_MARKER = "(null)"

func FormatItem(item domain.Item) string {
	value := item.Value
	if !item.Found {
		value = ABSENT_VALUE_MARKER
	}
	return fmt.Sprintf("{UUID: %s -- DATA: %s}", item.Key, value)
}

// LineSink writes one line per item. Lines from concurrent callers are never interleaved.
type LineSink struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

func (s *LineSink) Emit(item domain.Item) {
	line := FormatItem(item) + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := io.WriteString(s.w, line)
	if err != nil {
		metrics.writeErrors.Add(context.Background(), 1)
		if s.err == nil {
			s.err = fmt.Errorf("failed to write line for %s: %w", item.Key, err)
		}
		return
	}
	metrics.linesEmitted.Add(context.Background(), 1)
}

// Returns the first write error, if any
func (s *LineSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func WriteReport(w io.Writer, stats app.StatsSnapshot) error {
	_, err := fmt.Fprintf(w,
		"##### EXIT STATS #####\n"+
			"NUMBER OF UUID REQUESTS: %d\n"+
			"NUMBER OF API REQUESTS MADE: %d\n"+
			"NUMBER OF CACHE HITS: %d\n"+
			"NUMBER OF FETCH FAILURES: %d\n"+
			"NUMBER OF FAILED REQUESTS: %d\n"+
			"NUMBER OF REJECTED KEYS: %d\n"+
			"##### #### ##### #####\n",
		stats.KeysAccepted,
		stats.FetchesExecuted,
		stats.CacheHits,
		stats.FetchesFailed,
		stats.FailedRequests,
		stats.RejectedKeys,
	)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

var _ app.Sink = (*LineSink)(nil)
