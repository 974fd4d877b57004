package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/since-leoo/mall-stock/internal/adapter/storage"
	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/port"
)

type mockStockSource struct {
	mu       sync.Mutex
	counters map[string][]port.SkuCounter // keyed by pool key
	failWith error
}

func (m *mockStockSource) SkuCounters(_ context.Context, pool domain.Pool) ([]port.SkuCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.counters[pool.Key()], nil
}

func poolSnapshot(t *testing.T, store *storage.MemoryStockStore, pool domain.Pool, fields []string) map[string]int {
	t.Helper()
	snapshot := make(map[string]int)
	for _, field := range fields {
		remaining, ok, err := store.Remaining(context.Background(), pool, field)
		if err != nil {
			t.Fatalf("read %s: %v", field, err)
		}
		if ok {
			snapshot[field] = remaining
		}
	}
	return snapshot
}

func TestWarmPool_ComputesRemaining(t *testing.T) {
	store := storage.NewMemoryStockStore()
	pool := domain.SeckillPool(1)
	source := &mockStockSource{counters: map[string][]port.SkuCounter{
		pool.Key(): {
			{SkuID: 101, Total: 20, Sold: 5},
			{SkuID: 102, Total: 3, Sold: 7}, // oversold in the source; clamp to 0
		},
	}}

	w := NewCacheWarmer(source, store, nil)
	if err := w.WarmPool(context.Background(), pool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := remainingOf(t, store, pool, "101"); got != 15 {
		t.Errorf("expected remaining 15, got %d", got)
	}
	if got := remainingOf(t, store, pool, "102"); got != 0 {
		t.Errorf("expected remaining clamped to 0, got %d", got)
	}
}

func TestWarmPool_Idempotent(t *testing.T) {
	store := storage.NewMemoryStockStore()
	pool := domain.GlobalPool()
	source := &mockStockSource{counters: map[string][]port.SkuCounter{
		pool.Key(): {
			{SkuID: 101, Total: 20, Sold: 5},
			{SkuID: 102, Total: 8, Sold: 0},
		},
	}}

	w := NewCacheWarmer(source, store, nil)
	if err := w.WarmPool(context.Background(), pool); err != nil {
		t.Fatalf("first warm: %v", err)
	}
	first := poolSnapshot(t, store, pool, []string{"101", "102"})

	if err := w.WarmPool(context.Background(), pool); err != nil {
		t.Fatalf("second warm: %v", err)
	}
	second := poolSnapshot(t, store, pool, []string{"101", "102"})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("warm not idempotent: %v vs %v", first, second)
	}
	if first["101"] != 15 {
		t.Errorf("expected 15 for total=20 sold=5, got %d", first["101"])
	}
}

func TestWarmPool_FullReplaceDropsStaleFields(t *testing.T) {
	store := storage.NewMemoryStockStore()
	pool := domain.GlobalPool()
	seedPool(t, store, pool, map[string]int{"101": 4, "999": 12}) // 999 removed from the activity

	source := &mockStockSource{counters: map[string][]port.SkuCounter{
		pool.Key(): {{SkuID: 101, Total: 10, Sold: 2}},
	}}

	w := NewCacheWarmer(source, store, nil)
	if err := w.WarmPool(context.Background(), pool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := remainingOf(t, store, pool, "101"); got != 8 {
		t.Errorf("expected remaining 8, got %d", got)
	}
	if _, ok, _ := store.Remaining(context.Background(), pool, "999"); ok {
		t.Error("stale field survived the full replacement")
	}
}

func TestWarmPool_SourceFailureLeavesOldHash(t *testing.T) {
	store := storage.NewMemoryStockStore()
	pool := domain.GlobalPool()
	seedPool(t, store, pool, map[string]int{"101": 4})

	source := &mockStockSource{failWith: errors.New("db gone")}

	w := NewCacheWarmer(source, store, nil)
	if err := w.WarmPool(context.Background(), pool); err == nil {
		t.Fatal("expected error from failed source read")
	}

	// The old hash must still be there, not deleted-but-unrepopulated.
	if got := remainingOf(t, store, pool, "101"); got != 4 {
		t.Errorf("expected old value 4 preserved, got %d", got)
	}
}
