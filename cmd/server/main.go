package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/since-leoo/mall-stock/internal/adapter/event"
	"github.com/since-leoo/mall-stock/internal/adapter/handler"
	"github.com/since-leoo/mall-stock/internal/adapter/storage"
	"github.com/since-leoo/mall-stock/internal/config"
	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/core/service"
	"github.com/since-leoo/mall-stock/internal/middleware"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("ping redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	// Adapters
	store := storage.NewRedisStockStore(rdb)
	locker := storage.NewRedisLocker(rdb)
	orders := storage.NewMySQLOrderRepository(db)
	source := storage.NewMySQLStockSource(db)
	publisher := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderTopic, cfg.LowStockTopic)

	// Services
	locks := service.NewLockManager(locker, service.LockConfig{
		TTL:        cfg.LockTTL,
		Retries:    cfg.LockRetries,
		RetryDelay: cfg.LockRetryDelay,
	}, logger)
	reserver := service.NewReserver(store)
	rollback := service.NewRollbackService(store)
	warmer := service.NewCacheWarmer(source, store, logger)
	warning := service.NewWarningNotifier(store, publisher, cfg, logger)
	coordinator := service.NewCoordinator(
		service.FieldValidator{}, locks, reserver, rollback,
		orders, publisher, warning, logger,
	)

	// Warm the global pool at start and on a schedule; activity pools
	// are warmed on demand through the admin endpoint.
	if err := warmer.WarmPool(ctx, domain.GlobalPool()); err != nil {
		logger.Warn("initial warm failed", zap.Error(err))
	}
	go warmLoop(ctx, warmer, cfg.WarmInterval, logger)

	// HTTP
	r := gin.Default()
	h := handler.NewHTTPHandler(coordinator, warmer, store)
	h.Register(r, middleware.RateLimit(rdb, cfg.SubmitRateLimit, cfg.SubmitRateWindow))

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	if err := publisher.Close(); err != nil {
		logger.Warn("close kafka writer", zap.Error(err))
	}
	rdb.Close()
	db.Close()
	logger.Info("stopped")
}

func warmLoop(ctx context.Context, warmer *service.CacheWarmer, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := warmer.WarmPool(ctx, domain.GlobalPool()); err != nil {
				logger.Warn("scheduled warm failed", zap.Error(err))
			}
		}
	}
}
