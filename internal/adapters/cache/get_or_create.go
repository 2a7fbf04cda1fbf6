package cache

import (
	"context"
	"fmt"

	"github.com/Amund211/fetchonce/internal/logging"
)

// Returns value, fetched, error
func GetOrCreate(ctx context.Context, table Table, gate Gate, key string, fetch FetchFunc) (string, bool, error) {
	logger := logging.FromContext(ctx)

	entry, created := table.GetOrCreate(key)
	if created {
		logger.DebugContext(ctx, "Created cache entry")
	}

	value, fetched, err := Resolve(ctx, entry, gate, fetch)
	if err != nil {
		return "", fetched, fmt.Errorf("failed to resolve cache entry: %w", err)
	}

	if fetched {
		logger.InfoContext(ctx, "Getting item", "cache", "miss")
	} else {
		logger.InfoContext(ctx, "Getting item", "cache", "hit")
	}

	return value, fetched, nil
}
