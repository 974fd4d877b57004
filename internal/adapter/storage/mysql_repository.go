package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/port"
)

// MySQLOrderRepository persists orders, line items and the delivery
// address in one transaction.
type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (order_no, user_id, order_type, activity_id, amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderNo, order.UserID, order.Type, order.ActivityID,
		order.Amount, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return domain.Order{}, fmt.Errorf("order id: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, sku_id, quantity, unit_price)
			VALUES (?, ?, ?, ?)`,
			orderID, item.SkuID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_addresses (order_id, receiver, phone, province, city, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		orderID, order.Address.Receiver, order.Address.Phone,
		order.Address.Province, order.Address.City, order.Address.Detail,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order address: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}

	order.ID = orderID
	return order, nil
}

// MySQLStockSource reads the authoritative total/sold counters the
// cache warmer rebuilds a pool's ledger from.
type MySQLStockSource struct {
	db *sql.DB
}

func NewMySQLStockSource(db *sql.DB) *MySQLStockSource {
	return &MySQLStockSource{db: db}
}

func (s *MySQLStockSource) SkuCounters(ctx context.Context, pool domain.Pool) ([]port.SkuCounter, error) {
	var rows *sql.Rows
	var err error

	switch pool.Kind {
	case domain.PoolSeckill:
		rows, err = s.db.QueryContext(ctx, `
			SELECT sku_id, total, sold FROM seckill_skus WHERE session_id = ?`, pool.ActivityID)
	case domain.PoolGroupBuy:
		rows, err = s.db.QueryContext(ctx, `
			SELECT sku_id, total, sold FROM groupbuy_skus WHERE groupbuy_id = ?`, pool.ActivityID)
	default:
		rows, err = s.db.QueryContext(ctx, `
			SELECT sku_id, stock, sold FROM product_skus`)
	}
	if err != nil {
		return nil, fmt.Errorf("query counters for %s: %w", pool, err)
	}
	defer rows.Close()

	var counters []port.SkuCounter
	for rows.Next() {
		var c port.SkuCounter
		if err := rows.Scan(&c.SkuID, &c.Total, &c.Sold); err != nil {
			return nil, fmt.Errorf("scan counter: %w", err)
		}
		counters = append(counters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counters: %w", err)
	}
	return counters, nil
}
