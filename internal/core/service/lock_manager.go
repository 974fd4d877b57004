package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/port"
)

// ErrStockBusy means a SKU lock could not be acquired within the retry
// budget. The caller surfaces it as "temporarily unavailable, try again";
// this layer never retries on its own.
var ErrStockBusy = errors.New("stock busy")

const (
	defaultLockTTL        = 3000 * time.Millisecond
	defaultLockRetries    = 5
	defaultLockRetryDelay = 50 * time.Millisecond
)

// LockKey returns the lock key guarding one SKU.
func LockKey(skuID int64) string {
	return fmt.Sprintf("mall:stock:lock:%d", skuID)
}

// LockConfig tunes the bounded spin-wait. Zero values fall back to the
// defaults (3000ms TTL, 5 attempts, 50ms between attempts).
type LockConfig struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

func (c LockConfig) withDefaults() LockConfig {
	if c.TTL <= 0 {
		c.TTL = defaultLockTTL
	}
	if c.Retries <= 0 {
		c.Retries = defaultLockRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultLockRetryDelay
	}
	return c
}

// LockManager serializes the non-atomic business-rule evaluation that
// precedes reservation. Locking is per SKU: submissions with disjoint
// SKU sets proceed fully concurrently.
type LockManager struct {
	locker port.Locker
	cfg    LockConfig
	logger *zap.Logger
}

func NewLockManager(locker port.Locker, cfg LockConfig, logger *zap.Logger) *LockManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockManager{locker: locker, cfg: cfg.withDefaults(), logger: logger}
}

// AcquireLocks takes one lock per distinct SKU in the request, in
// ascending SKU order. If any lock cannot be acquired after the retry
// budget, every lock taken so far is released and ErrStockBusy is
// returned. On success the returned map (lock key -> owner token) must
// be passed to ReleaseLocks.
func (m *LockManager) AcquireLocks(ctx context.Context, items domain.ReservationRequest) (map[string]string, error) {
	acquired := make(map[string]string, len(items))

	for _, skuID := range items.SkuIDs() {
		key := LockKey(skuID)
		token, err := m.acquireOne(ctx, key)
		if err != nil {
			m.ReleaseLocks(ctx, acquired)
			return nil, err
		}
		acquired[key] = token
	}
	return acquired, nil
}

func (m *LockManager) acquireOne(ctx context.Context, key string) (string, error) {
	for attempt := 0; attempt < m.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(m.cfg.RetryDelay):
			}
		}

		token, ok, err := m.locker.TryAcquire(ctx, key, m.cfg.TTL)
		if err != nil {
			return "", fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return token, nil
		}
	}
	return "", ErrStockBusy
}

// ReleaseLocks releases every lock in the map. Release is guarded by
// the owner token, so a lock that expired and was re-acquired by a
// third party is left alone. Per-lock failures are logged and skipped;
// a release problem must never mask the primary error being propagated.
func (m *LockManager) ReleaseLocks(ctx context.Context, locks map[string]string) {
	for key, token := range locks {
		if err := m.locker.Release(ctx, key, token); err != nil {
			m.logger.Warn("release stock lock failed",
				zap.String("key", key), zap.Error(err))
		}
	}
}
