package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/port"
)

// CacheWarmer rebuilds a pool's ledger from the relational source of
// truth: remaining = max(0, total - sold) per SKU, written as a full
// hash replacement so no stale fields survive a configuration change.
// Idempotent given unchanged source data.
type CacheWarmer struct {
	source port.StockSource
	store  port.StockStore
	logger *zap.Logger
}

func NewCacheWarmer(source port.StockSource, store port.StockStore, logger *zap.Logger) *CacheWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheWarmer{source: source, store: store, logger: logger}
}

// WarmPool replaces the pool's hash wholesale. A source read failure
// aborts the warm with the old hash left in place; it is never deleted
// without being repopulated.
func (w *CacheWarmer) WarmPool(ctx context.Context, pool domain.Pool) error {
	counters, err := w.source.SkuCounters(ctx, pool)
	if err != nil {
		return fmt.Errorf("read stock counters for %s: %w", pool, err)
	}

	remaining := make(map[string]int, len(counters))
	for _, c := range counters {
		left := c.Total - c.Sold
		if left < 0 {
			left = 0
		}
		remaining[strconv.FormatInt(c.SkuID, 10)] = left
	}

	if err := w.store.ReplaceAll(ctx, pool, remaining); err != nil {
		return fmt.Errorf("replace ledger for %s: %w", pool, err)
	}

	w.logger.Info("stock pool warmed",
		zap.String("pool", pool.String()),
		zap.Int("skus", len(remaining)))
	return nil
}
