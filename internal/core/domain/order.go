package domain

import "time"

type OrderType string

const (
	OrderTypeNormal   OrderType = "normal"
	OrderTypeSeckill  OrderType = "seckill"
	OrderTypeGroupBuy OrderType = "groupbuy"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderItem struct {
	SkuID     int64
	Quantity  int
	UnitPrice int64 // cents
}

type Address struct {
	Receiver string
	Phone    string
	Province string
	City     string
	Detail   string
}

type Order struct {
	ID         int64
	OrderNo    string
	UserID     int64
	Type       OrderType
	ActivityID int64 // seckill session / group-buy id; zero for normal orders
	Items      []OrderItem
	Address    Address
	Amount     int64 // cents
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Pool returns the stock pool this order draws from.
func (o Order) Pool() Pool {
	switch o.Type {
	case OrderTypeSeckill:
		return SeckillPool(o.ActivityID)
	case OrderTypeGroupBuy:
		return GroupBuyPool(o.ActivityID)
	default:
		return GlobalPool()
	}
}

// Reservation builds the reservation request for the order's items.
func (o Order) Reservation() ReservationRequest {
	req := make(ReservationRequest, 0, len(o.Items))
	for _, item := range o.Items {
		req = append(req, Line{SkuID: item.SkuID, Quantity: item.Quantity})
	}
	return req
}
