package domain

import "time"

// OrderCreated is published after an order and its items are persisted.
type OrderCreated struct {
	OrderNo    string      `json:"order_no"`
	UserID     int64       `json:"user_id"`
	Type       OrderType   `json:"type"`
	ActivityID int64       `json:"activity_id,omitempty"`
	Amount     int64       `json:"amount"`
	Items      []EventItem `json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
}

type EventItem struct {
	SkuID    int64 `json:"sku_id"`
	Quantity int   `json:"quantity"`
}

// LowStockWarning is advisory telemetry emitted when a SKU's remaining
// stock falls to or below the configured threshold after a reserve.
type LowStockWarning struct {
	Pool      string `json:"pool"`
	SkuID     int64  `json:"sku_id"`
	Remaining int    `json:"remaining"`
	Threshold int    `json:"threshold"`
}
