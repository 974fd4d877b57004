package service

import (
	"context"
	"errors"
	"testing"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

func TestFieldValidator(t *testing.T) {
	valid := domain.Order{
		UserID:     1,
		Type:       domain.OrderTypeSeckill,
		ActivityID: 9,
		Items:      []domain.OrderItem{{SkuID: 101, Quantity: 1}},
	}

	cases := []struct {
		name    string
		mutate  func(o domain.Order) domain.Order
		wantErr bool
	}{
		{"valid seckill order", func(o domain.Order) domain.Order { return o }, false},
		{"missing user", func(o domain.Order) domain.Order { o.UserID = 0; return o }, true},
		{"no items", func(o domain.Order) domain.Order { o.Items = nil; return o }, true},
		{"zero quantity", func(o domain.Order) domain.Order {
			o.Items = []domain.OrderItem{{SkuID: 101, Quantity: 0}}
			return o
		}, true},
		{"activity order without activity id", func(o domain.Order) domain.Order {
			o.ActivityID = 0
			return o
		}, true},
		{"unknown type", func(o domain.Order) domain.Order { o.Type = "auction"; return o }, true},
		{"normal order needs no activity", func(o domain.Order) domain.Order {
			o.Type = domain.OrderTypeNormal
			o.ActivityID = 0
			return o
		}, false},
	}

	v := FieldValidator{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tc.mutate(valid))
			if tc.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got: %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
