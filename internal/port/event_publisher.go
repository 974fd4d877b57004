package port

import (
	"context"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

// EventPublisher raises downstream signals. PublishLowStock is advisory:
// callers ignore its error beyond logging.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error
	PublishLowStock(ctx context.Context, event domain.LowStockWarning) error
}
