package port

import (
	"context"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

// OrderValidator runs order-type-specific business rules (activity
// window, purchase limits, member eligibility) before any stock is
// touched. Implementations live outside this subsystem.
type OrderValidator interface {
	Validate(ctx context.Context, order domain.Order) error
}

// Settings exposes the low-stock threshold below which a warning event
// is emitted after a successful reserve.
type Settings interface {
	LowStockThreshold() int
}
