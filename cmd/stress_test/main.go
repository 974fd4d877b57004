package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/since-leoo/mall-stock/internal/adapter/storage"
	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/core/service"
)

const (
	redisAddr     = "localhost:6379"
	skuID         = 9001
	initialStock  = 20
	totalRequests = 50
)

// orders persisted in memory; the stress run exercises the lock /
// reserve / rollback path against a real Redis.
type memOrderRepo struct {
	nextID atomic.Int64
}

func (r *memOrderRepo) Save(_ context.Context, order domain.Order) (domain.Order, error) {
	order.ID = r.nextID.Add(1)
	return order, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderCreated(context.Context, domain.OrderCreated) error { return nil }
func (nopPublisher) PublishLowStock(context.Context, domain.LowStockWarning) error  { return nil }

type noWarnings struct{}

func (noWarnings) LowStockThreshold() int { return -1 }

func main() {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer rdb.Close()

	store := storage.NewRedisStockStore(rdb)
	locker := storage.NewRedisLocker(rdb)
	pool := domain.GlobalPool()

	if err := store.ReplaceAll(ctx, pool, map[string]int{fmt.Sprint(skuID): initialStock}); err != nil {
		log.Fatalf("seed stock: %v", err)
	}

	logger := zap.NewNop()
	locks := service.NewLockManager(locker, service.LockConfig{}, logger)
	reserver := service.NewReserver(store)
	rollback := service.NewRollbackService(store)
	warning := service.NewWarningNotifier(store, nopPublisher{}, noWarnings{}, logger)
	coordinator := service.NewCoordinator(
		service.FieldValidator{}, locks, reserver, rollback,
		&memOrderRepo{}, nopPublisher{}, warning, logger,
	)

	var success, busy, soldOut atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()

			_, err := coordinator.Submit(ctx, domain.Order{
				UserID:  userID,
				Type:    domain.OrderTypeNormal,
				Items:   []domain.OrderItem{{SkuID: skuID, Quantity: 1, UnitPrice: 9900}},
				Address: domain.Address{Receiver: "stress", Phone: "0", Detail: "-"},
			})
			switch {
			case err == nil:
				success.Add(1)
			case err == service.ErrStockBusy:
				busy.Add(1)
			default:
				soldOut.Add(1)
			}
		}(int64(i + 1))
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success.Load())
	fmt.Printf("Busy:             %d\n", busy.Load())
	fmt.Printf("Rejected:         %d\n", soldOut.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	remaining, _, _ := store.Remaining(ctx, pool, fmt.Sprint(skuID))
	fmt.Printf("Final Stock: %d\n", remaining)

	if int(success.Load())+remaining == initialStock && remaining >= 0 {
		fmt.Println("PASS: no oversell, ledger consistent")
	} else {
		fmt.Printf("FAIL: %d successes with %d remaining of %d\n",
			success.Load(), remaining, initialStock)
	}
}
