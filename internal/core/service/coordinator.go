package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/port"
)

// Coordinator runs one order submission end to end:
// validate -> lock -> reserve -> persist -> publish, with stock rolled
// back on persistence failure and locks released on every exit path.
type Coordinator struct {
	validator port.OrderValidator
	locks     *LockManager
	reserver  *Reserver
	rollback  *RollbackService
	orders    port.OrderRepository
	publisher port.EventPublisher
	warning   *WarningNotifier
	logger    *zap.Logger
}

func NewCoordinator(
	validator port.OrderValidator,
	locks *LockManager,
	reserver *Reserver,
	rollback *RollbackService,
	orders port.OrderRepository,
	publisher port.EventPublisher,
	warning *WarningNotifier,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		validator: validator,
		locks:     locks,
		reserver:  reserver,
		rollback:  rollback,
		orders:    orders,
		publisher: publisher,
		warning:   warning,
		logger:    logger,
	}
}

// Submit places one order. Failure modes:
//   - validation error: nothing touched
//   - ErrStockBusy: lock retries exhausted, nothing touched
//   - ErrInsufficientStock: locks released, ledger untouched
//   - persistence error: best-effort stock rollback, original error
//     returned unmodified
func (c *Coordinator) Submit(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := c.validator.Validate(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("validate order: %w", err)
	}

	order = fillDefaults(order)
	items := order.Reservation()
	pool := order.Pool()

	locks, err := c.locks.AcquireLocks(ctx, items)
	if err != nil {
		return domain.Order{}, err
	}
	defer c.locks.ReleaseLocks(ctx, locks)

	demand, err := c.reserver.Reserve(ctx, pool, items)
	if err != nil {
		return domain.Order{}, err
	}

	persisted, err := c.orders.Save(ctx, order)
	if err != nil {
		if rbErr := c.rollback.Rollback(ctx, pool, items); rbErr != nil {
			// The ledger stays under-counted until the next warm.
			c.logger.Error("stock rollback failed after persist error",
				zap.String("order_no", order.OrderNo),
				zap.String("pool", pool.String()),
				zap.Error(rbErr))
		}
		return domain.Order{}, err
	}

	if pubErr := c.publisher.PublishOrderCreated(ctx, orderCreated(persisted)); pubErr != nil {
		// The order is already durable; the event can be replayed.
		c.logger.Warn("publish order-created failed",
			zap.String("order_no", persisted.OrderNo), zap.Error(pubErr))
	}

	c.warning.CheckAfterReserve(ctx, pool, demand)

	return persisted, nil
}

func fillDefaults(order domain.Order) domain.Order {
	now := time.Now()
	if order.OrderNo == "" {
		order.OrderNo = newOrderNo()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.Amount == 0 {
		for _, item := range order.Items {
			order.Amount += item.UnitPrice * int64(item.Quantity)
		}
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	return order
}

func newOrderNo() string {
	return "MO" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
}

func orderCreated(order domain.Order) domain.OrderCreated {
	items := make([]domain.EventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.EventItem{SkuID: item.SkuID, Quantity: item.Quantity})
	}
	return domain.OrderCreated{
		OrderNo:    order.OrderNo,
		UserID:     order.UserID,
		Type:       order.Type,
		ActivityID: order.ActivityID,
		Amount:     order.Amount,
		Items:      items,
		CreatedAt:  order.CreatedAt,
	}
}
