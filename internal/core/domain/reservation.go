package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var ErrInvalidQuantity = errors.New("quantity must be > 0")

// Line is one cart line: a SKU and how many units the buyer wants.
type Line struct {
	SkuID    int64
	Quantity int
}

// ReservationRequest is the ordered list of cart lines to reserve. The
// unit of atomicity is the aggregated per-SKU demand, not the line.
type ReservationRequest []Line

// Aggregate folds duplicate SKUs into a single demand per SKU. Field
// names in the ledger are decimal SKU ids.
func (r ReservationRequest) Aggregate() (map[string]int, error) {
	if len(r) == 0 {
		return nil, errors.New("reservation request is empty")
	}

	demand := make(map[string]int, len(r))
	for _, line := range r {
		if line.SkuID <= 0 {
			return nil, fmt.Errorf("invalid sku id %d", line.SkuID)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("sku %d: %w", line.SkuID, ErrInvalidQuantity)
		}
		demand[strconv.FormatInt(line.SkuID, 10)] += line.Quantity
	}
	return demand, nil
}

// SkuIDs returns the distinct SKU ids of the request in ascending order.
// Locks are always taken in this order so two requests sharing SKUs
// cannot deadlock each other.
func (r ReservationRequest) SkuIDs() []int64 {
	seen := make(map[int64]struct{}, len(r))
	ids := make([]int64, 0, len(r))
	for _, line := range r {
		if _, ok := seen[line.SkuID]; ok {
			continue
		}
		seen[line.SkuID] = struct{}{}
		ids = append(ids, line.SkuID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
