package app

import (
	"context"
	"fmt"

	"github.com/Amund211/fetchonce/internal/adapters/cache"
	"github.com/Amund211/fetchonce/internal/adapters/itemprovider"
	"github.com/Amund211/fetchonce/internal/domain"
	"github.com/Amund211/fetchonce/internal/logging"
	"github.com/Amund211/fetchonce/internal/strutils"
)

type GetItemWithCache func(ctx context.Context, key string) (domain.Item, error)

func BuildGetItemWithCache(table cache.Table, gate cache.Gate, provider itemprovider.ItemProvider, stats *Stats) GetItemWithCache {
	return func(ctx context.Context, key string) (domain.Item, error) {
		// The dispatcher rejects invalid tokens before they get here. This guards other callers.
		if err := strutils.ValidateKey(key); err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Key is not valid", "error", err.Error())
			return domain.Item{Key: key}, err
		}

		value, fetched, err := cache.GetOrCreate(ctx, table, gate, key, provider.GetItem)
		if fetched {
			stats.FetchExecuted(ctx, err != nil)
		} else if err == nil {
			stats.CacheHit(ctx)
		}
		if err != nil {
			// NOTE: ItemProvider implementations handle their own error reporting
			return domain.Item{Key: key}, fmt.Errorf("failed to cache.GetOrCreate item: %w", err)
		}

		return domain.Item{Key: key, Value: value, Found: true}, nil
	}
}
