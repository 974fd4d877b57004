package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/port"
)

// WarningNotifier checks remaining stock after a successful reserve and
// emits a low-stock signal for every SKU at or below the threshold.
// Purely advisory: it never rolls back, blocks, or fails a submission.
type WarningNotifier struct {
	store     port.StockStore
	publisher port.EventPublisher
	settings  port.Settings
	logger    *zap.Logger
}

func NewWarningNotifier(store port.StockStore, publisher port.EventPublisher, settings port.Settings, logger *zap.Logger) *WarningNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarningNotifier{store: store, publisher: publisher, settings: settings, logger: logger}
}

// CheckAfterReserve inspects every SKU the reserve decremented. Read or
// publish failures are logged and swallowed.
func (n *WarningNotifier) CheckAfterReserve(ctx context.Context, pool domain.Pool, demand map[string]int) {
	threshold := n.settings.LowStockThreshold()
	if threshold < 0 {
		return
	}

	for field := range demand {
		remaining, ok, err := n.store.Remaining(ctx, pool, field)
		if err != nil {
			n.logger.Warn("low-stock check failed",
				zap.String("pool", pool.String()), zap.String("sku", field), zap.Error(err))
			continue
		}
		if !ok || remaining > threshold {
			continue
		}

		skuID, _ := strconv.ParseInt(field, 10, 64)
		event := domain.LowStockWarning{
			Pool:      pool.String(),
			SkuID:     skuID,
			Remaining: remaining,
			Threshold: threshold,
		}
		if err := n.publisher.PublishLowStock(ctx, event); err != nil {
			n.logger.Warn("publish low-stock warning failed",
				zap.String("pool", pool.String()), zap.String("sku", field), zap.Error(err))
		}
	}
}
