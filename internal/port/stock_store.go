package port

import (
	"context"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

// StockStore is the key-value backend holding per-SKU remaining stock in
// named hashes, one hash per pool. All mutation goes through the atomic
// reserve, the compensating increment, or a full warm replacement.
type StockStore interface {
	// CheckAndDecrementAll verifies every field's remaining value covers
	// the demanded quantity and, only if all checks pass, applies all
	// decrements. The whole check-then-decrement runs as one indivisible
	// unit; a missing field counts as insufficient. Returns false with
	// no side effects when any single SKU falls short.
	CheckAndDecrementAll(ctx context.Context, pool domain.Pool, demand map[string]int) (bool, error)

	// IncrementAll adds the given quantities back. Used for best-effort
	// compensation after a failed downstream step.
	IncrementAll(ctx context.Context, pool domain.Pool, demand map[string]int) error

	// Remaining reads one SKU's remaining value. ok is false when the
	// field does not exist.
	Remaining(ctx context.Context, pool domain.Pool, skuID string) (remaining int, ok bool, err error)

	// ReplaceAll deletes the pool's hash and writes the full replacement
	// in one batch, so no stale fields survive.
	ReplaceAll(ctx context.Context, pool domain.Pool, remaining map[string]int) error
}
