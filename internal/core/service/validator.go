package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

var ErrValidation = errors.New("invalid order")

// FieldValidator enforces the structural rules every order type shares.
// Activity-specific business strategies (eligibility windows, purchase
// limits) live outside this subsystem and plug in behind
// port.OrderValidator; this is the default used when none is wired.
type FieldValidator struct{}

func (FieldValidator) Validate(_ context.Context, order domain.Order) error {
	if order.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrValidation)
	}
	for _, item := range order.Items {
		if item.SkuID <= 0 {
			return fmt.Errorf("%w: invalid sku id %d", ErrValidation, item.SkuID)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: sku %d quantity must be > 0", ErrValidation, item.SkuID)
		}
	}

	switch order.Type {
	case domain.OrderTypeNormal, "":
	case domain.OrderTypeSeckill, domain.OrderTypeGroupBuy:
		if order.ActivityID <= 0 {
			return fmt.Errorf("%w: %s order needs an activity id", ErrValidation, order.Type)
		}
	default:
		return fmt.Errorf("%w: unknown order type %q", ErrValidation, order.Type)
	}
	return nil
}
