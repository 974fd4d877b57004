package service

import (
	"context"
	"testing"

	"github.com/since-leoo/mall-stock/internal/adapter/storage"
	"github.com/since-leoo/mall-stock/internal/core/domain"
)

func TestCheckAfterReserve_EmitsAtOrBelowThreshold(t *testing.T) {
	store := storage.NewMemoryStockStore()
	publisher := &mockPublisher{}
	pool := domain.GlobalPool()
	seedPool(t, store, pool, map[string]int{"101": 3, "102": 50})

	n := NewWarningNotifier(store, publisher, staticSettings{threshold: 3}, nil)
	n.CheckAfterReserve(context.Background(), pool, map[string]int{"101": 1, "102": 1})

	if len(publisher.warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(publisher.warnings))
	}
	w := publisher.warnings[0]
	if w.SkuID != 101 || w.Remaining != 3 || w.Threshold != 3 || w.Pool != "global" {
		t.Errorf("unexpected warning payload: %+v", w)
	}
}

func TestCheckAfterReserve_SkipsMissingFields(t *testing.T) {
	store := storage.NewMemoryStockStore()
	publisher := &mockPublisher{}
	pool := domain.GlobalPool()

	n := NewWarningNotifier(store, publisher, staticSettings{threshold: 5}, nil)
	n.CheckAfterReserve(context.Background(), pool, map[string]int{"404": 1})

	if len(publisher.warnings) != 0 {
		t.Errorf("expected no warnings for missing field, got %d", len(publisher.warnings))
	}
}

func TestCheckAfterReserve_DisabledByNegativeThreshold(t *testing.T) {
	store := storage.NewMemoryStockStore()
	publisher := &mockPublisher{}
	pool := domain.GlobalPool()
	seedPool(t, store, pool, map[string]int{"101": 0})

	n := NewWarningNotifier(store, publisher, staticSettings{threshold: -1}, nil)
	n.CheckAfterReserve(context.Background(), pool, map[string]int{"101": 1})

	if len(publisher.warnings) != 0 {
		t.Errorf("expected no warnings when disabled, got %d", len(publisher.warnings))
	}
}
