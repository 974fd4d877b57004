package service

import (
	"context"
	"fmt"

	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/port"
)

// RollbackService compensates a successful reserve when a later step of
// order creation fails. It is best-effort: the increment is not part of
// the same atomic unit as the decrement, so a process crash between
// reserve and rollback leaves the ledger under-counted until the next
// cache warm reconciles it from the relational totals.
type RollbackService struct {
	store port.StockStore
}

func NewRollbackService(store port.StockStore) *RollbackService {
	return &RollbackService{store: store}
}

// Rollback re-aggregates the request and increments each SKU back by
// the previously decremented amount.
func (s *RollbackService) Rollback(ctx context.Context, pool domain.Pool, items domain.ReservationRequest) error {
	demand, err := items.Aggregate()
	if err != nil {
		return err
	}
	if err := s.store.IncrementAll(ctx, pool, demand); err != nil {
		return fmt.Errorf("rollback stock: %w", err)
	}
	return nil
}
