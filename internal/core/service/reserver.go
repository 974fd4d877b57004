package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/port"
)

// ErrInsufficientStock means the atomic check failed for at least one
// SKU. By construction the ledger is unchanged, so retrying the same
// request fails again unless stock is replenished.
var ErrInsufficientStock = errors.New("insufficient stock")

// Reserver decrements stock for a whole cart as one indivisible
// operation: either every aggregated SKU demand is covered and all
// decrements apply, or nothing changes.
type Reserver struct {
	store port.StockStore
}

func NewReserver(store port.StockStore) *Reserver {
	return &Reserver{store: store}
}

// Reserve aggregates duplicate SKUs and runs the all-or-nothing
// check-and-decrement against the pool's ledger. On success it returns
// the aggregated demand that was decremented, keyed by ledger field.
func (r *Reserver) Reserve(ctx context.Context, pool domain.Pool, items domain.ReservationRequest) (map[string]int, error) {
	demand, err := items.Aggregate()
	if err != nil {
		return nil, err
	}

	ok, err := r.store.CheckAndDecrementAll(ctx, pool, demand)
	if err != nil {
		return nil, fmt.Errorf("reserve stock: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientStock
	}
	return demand, nil
}
