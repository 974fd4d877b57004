package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

// MemoryStockStore is the in-process StockStore: a mutex guarding the
// per-pool counters, giving the same all-or-nothing semantics as the
// Redis script. Used by unit tests and single-node deployments.
type MemoryStockStore struct {
	mu    sync.Mutex
	pools map[string]map[string]int
}

func NewMemoryStockStore() *MemoryStockStore {
	return &MemoryStockStore{pools: make(map[string]map[string]int)}
}

func (s *MemoryStockStore) CheckAndDecrementAll(_ context.Context, pool domain.Pool, demand map[string]int) (bool, error) {
	if len(demand) == 0 {
		return false, errors.New("empty demand")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.pools[pool.Key()]
	for field, qty := range demand {
		current, ok := ledger[field]
		if !ok || current < qty {
			return false, nil
		}
	}
	for field, qty := range demand {
		ledger[field] -= qty
	}
	return true, nil
}

func (s *MemoryStockStore) IncrementAll(_ context.Context, pool domain.Pool, demand map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.pools[pool.Key()]
	if ledger == nil {
		ledger = make(map[string]int)
		s.pools[pool.Key()] = ledger
	}
	for field, qty := range demand {
		ledger[field] += qty
	}
	return nil
}

func (s *MemoryStockStore) Remaining(_ context.Context, pool domain.Pool, skuID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining, ok := s.pools[pool.Key()][skuID]
	return remaining, ok, nil
}

func (s *MemoryStockStore) ReplaceAll(_ context.Context, pool domain.Pool, remaining map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := make(map[string]int, len(remaining))
	for field, qty := range remaining {
		ledger[field] = qty
	}
	s.pools[pool.Key()] = ledger
	return nil
}

type memoryLockEntry struct {
	token    string
	expireAt time.Time
}

// MemoryLocker mirrors the Redis lock semantics in process: set if
// absent with TTL, release only when the token matches.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLockEntry
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]memoryLockEntry)}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, held := l.locks[key]
	if held && time.Now().Before(entry.expireAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.locks[key] = memoryLockEntry{token: token, expireAt: time.Now().Add(ttl)}
	return token, true, nil
}

func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, held := l.locks[key]; held && entry.token == token {
		delete(l.locks, key)
	}
	return nil
}
