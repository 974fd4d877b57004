package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func testPool(t *testing.T, client *redis.Client) domain.Pool {
	t.Helper()
	pool := domain.SeckillPool(999999)
	client.Del(context.Background(), pool.Key())
	t.Cleanup(func() { client.Del(context.Background(), pool.Key()) })
	return pool
}

func TestRedisStore_CheckAndDecrementAll(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStockStore(client)
	pool := testPool(t, client)

	if err := store.ReplaceAll(ctx, pool, map[string]int{"101": 10, "102": 4}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ok, err := store.CheckAndDecrementAll(ctx, pool, map[string]int{"101": 3, "102": 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected success")
	}

	remaining, found, err := store.Remaining(ctx, pool, "101")
	if err != nil || !found {
		t.Fatalf("remaining lookup: found=%v err=%v", found, err)
	}
	if remaining != 7 {
		t.Errorf("expected 7, got %d", remaining)
	}
	if remaining, _, _ := store.Remaining(ctx, pool, "102"); remaining != 0 {
		t.Errorf("expected 0, got %d", remaining)
	}
}

func TestRedisStore_AllOrNothing(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStockStore(client)
	pool := testPool(t, client)

	store.ReplaceAll(ctx, pool, map[string]int{"101": 10, "102": 1})

	ok, err := store.CheckAndDecrementAll(ctx, pool, map[string]int{"101": 3, "102": 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected failure for short sku 102")
	}

	if remaining, _, _ := store.Remaining(ctx, pool, "101"); remaining != 10 {
		t.Errorf("sku 101 decremented despite failed reserve: %d", remaining)
	}
	if remaining, _, _ := store.Remaining(ctx, pool, "102"); remaining != 1 {
		t.Errorf("sku 102 decremented despite failed reserve: %d", remaining)
	}
}

func TestRedisStore_MissingFieldIsInsufficient(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStockStore(client)
	pool := testPool(t, client)

	store.ReplaceAll(ctx, pool, map[string]int{"101": 10})

	ok, err := store.CheckAndDecrementAll(ctx, pool, map[string]int{"101": 1, "404": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected failure for missing field")
	}
	if remaining, _, _ := store.Remaining(ctx, pool, "101"); remaining != 10 {
		t.Errorf("sku 101 changed: %d", remaining)
	}
}

func TestRedisStore_IncrementAllRestoresStock(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStockStore(client)
	pool := testPool(t, client)

	store.ReplaceAll(ctx, pool, map[string]int{"101": 10, "102": 4})
	store.CheckAndDecrementAll(ctx, pool, map[string]int{"101": 3, "102": 2})

	if err := store.IncrementAll(ctx, pool, map[string]int{"101": 3, "102": 2}); err != nil {
		t.Fatalf("increment: %v", err)
	}

	if remaining, _, _ := store.Remaining(ctx, pool, "101"); remaining != 10 {
		t.Errorf("expected 10, got %d", remaining)
	}
	if remaining, _, _ := store.Remaining(ctx, pool, "102"); remaining != 4 {
		t.Errorf("expected 4, got %d", remaining)
	}
}

func TestRedisStore_ReplaceAllDropsStaleFields(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStockStore(client)
	pool := testPool(t, client)

	store.ReplaceAll(ctx, pool, map[string]int{"101": 10, "999": 3})
	store.ReplaceAll(ctx, pool, map[string]int{"101": 8})

	if remaining, _, _ := store.Remaining(ctx, pool, "101"); remaining != 8 {
		t.Errorf("expected 8, got %d", remaining)
	}
	if _, found, _ := store.Remaining(ctx, pool, "999"); found {
		t.Error("stale field 999 survived ReplaceAll")
	}
}

func TestRedisStore_ConcurrentNoOversell(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStockStore(client)
	pool := testPool(t, client)

	initialStock := 20
	totalRequests := 50
	store.ReplaceAll(ctx, pool, map[string]int{"101": initialStock})

	var success atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.CheckAndDecrementAll(ctx, pool, map[string]int{"101": 1})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				success.Add(1)
			}
		}()
	}
	wg.Wait()

	if success.Load() != int32(initialStock) {
		t.Errorf("expected %d successes, got %d", initialStock, success.Load())
	}
	if remaining, _, _ := store.Remaining(ctx, pool, "101"); remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", remaining)
	}
}
