package domain

import "fmt"

// PoolKind selects which stock ledger a reservation runs against.
type PoolKind string

const (
	PoolGlobal   PoolKind = "global"
	PoolSeckill  PoolKind = "seckill"
	PoolGroupBuy PoolKind = "groupbuy"
)

// Pool identifies one stock ledger: the global pool, a seckill session
// pool, or a group-buy activity pool.
type Pool struct {
	Kind       PoolKind
	ActivityID int64 // session id / group-buy id; unused for the global pool
}

func GlobalPool() Pool {
	return Pool{Kind: PoolGlobal}
}

func SeckillPool(sessionID int64) Pool {
	return Pool{Kind: PoolSeckill, ActivityID: sessionID}
}

func GroupBuyPool(groupBuyID int64) Pool {
	return Pool{Kind: PoolGroupBuy, ActivityID: groupBuyID}
}

// Key returns the ledger hash key for this pool.
func (p Pool) Key() string {
	switch p.Kind {
	case PoolSeckill:
		return fmt.Sprintf("seckill:stock:%d", p.ActivityID)
	case PoolGroupBuy:
		return fmt.Sprintf("groupbuy:stock:%d", p.ActivityID)
	default:
		return "product:stock"
	}
}

func (p Pool) String() string {
	if p.Kind == PoolGlobal || p.Kind == "" {
		return string(PoolGlobal)
	}
	return fmt.Sprintf("%s:%d", p.Kind, p.ActivityID)
}
