package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/since-leoo/mall-stock/internal/core/domain"
)

// reserveStockScript validates every field before touching any of them:
// the whole multi-SKU check-and-decrement executes as one uninterrupted
// unit on the server, so no client ever observes a partially applied
// cart. A missing field counts as insufficient, never as unlimited.
// KEYS[1] = pool hash, ARGV = flat [sku, qty, sku, qty, ...] pairs.
var reserveStockScript = redis.NewScript(`
local key = KEYS[1]

for i = 1, #ARGV, 2 do
	local current = tonumber(redis.call('HGET', key, ARGV[i]))
	local need = tonumber(ARGV[i + 1])
	if current == nil or current < need then
		return 0
	end
end

for i = 1, #ARGV, 2 do
	redis.call('HINCRBY', key, ARGV[i], -tonumber(ARGV[i + 1]))
end

return 1
`)

// RedisStockStore keeps one hash per pool: field = SKU id, value =
// remaining quantity.
type RedisStockStore struct {
	client *redis.Client
}

func NewRedisStockStore(client *redis.Client) *RedisStockStore {
	return &RedisStockStore{client: client}
}

func (s *RedisStockStore) CheckAndDecrementAll(ctx context.Context, pool domain.Pool, demand map[string]int) (bool, error) {
	if len(demand) == 0 {
		return false, errors.New("empty demand")
	}

	argv := make([]interface{}, 0, len(demand)*2)
	for field, qty := range demand {
		argv = append(argv, field, qty)
	}

	result, err := reserveStockScript.Run(ctx, s.client, []string{pool.Key()}, argv...).Int()
	if err != nil {
		return false, fmt.Errorf("reserve script: %w", err)
	}
	return result == 1, nil
}

func (s *RedisStockStore) IncrementAll(ctx context.Context, pool domain.Pool, demand map[string]int) error {
	pipe := s.client.TxPipeline()
	for field, qty := range demand {
		pipe.HIncrBy(ctx, pool.Key(), field, int64(qty))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStockStore) Remaining(ctx context.Context, pool domain.Pool, skuID string) (int, bool, error) {
	val, err := s.client.HGet(ctx, pool.Key(), skuID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	remaining, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("non-integer stock field %s: %w", skuID, err)
	}
	return remaining, true, nil
}

// ReplaceAll deletes the hash and rewrites it in a single transaction
// so concurrent readers never see a half-written ledger.
func (s *RedisStockStore) ReplaceAll(ctx context.Context, pool domain.Pool, remaining map[string]int) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, pool.Key())
	if len(remaining) > 0 {
		fields := make(map[string]interface{}, len(remaining))
		for field, qty := range remaining {
			fields[field] = qty
		}
		pipe.HSet(ctx, pool.Key(), fields)
	}
	_, err := pipe.Exec(ctx)
	return err
}
