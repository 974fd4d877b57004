package port

import (
	"context"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

// OrderRepository persists an order, its line items and delivery address
// in one relational transaction and returns the order with its id set.
type OrderRepository interface {
	Save(ctx context.Context, order domain.Order) (domain.Order, error)
}

// SkuCounter is the authoritative total/sold pair for one SKU in a pool.
type SkuCounter struct {
	SkuID int64
	Total int
	Sold  int
}

// StockSource reads the relational source of truth the cache warmer
// rebuilds a pool's ledger from.
type StockSource interface {
	SkuCounters(ctx context.Context, pool domain.Pool) ([]SkuCounter, error)
}
