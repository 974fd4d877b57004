package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/since-leoo/mall-stock/internal/core/domain"
	"github.com/since-leoo/mall-stock/internal/core/service"
	"github.com/since-leoo/mall-stock/internal/port"
)

type HTTPHandler struct {
	coordinator *service.Coordinator
	warmer      *service.CacheWarmer
	store       port.StockStore
}

func NewHTTPHandler(coordinator *service.Coordinator, warmer *service.CacheWarmer, store port.StockStore) *HTTPHandler {
	return &HTTPHandler{coordinator: coordinator, warmer: warmer, store: store}
}

// Register wires the HTTP routes. submitMiddleware is applied to the
// order submission route only (rate limiting).
func (h *HTTPHandler) Register(r *gin.Engine, submitMiddleware ...gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	submit := append(submitMiddleware, h.SubmitOrder)
	r.POST("/api/orders", submit...)
	r.GET("/api/stock", h.GetStock)
	r.POST("/api/admin/stock/warm", h.WarmPool)
}

type submitItem struct {
	SkuID     int64 `json:"sku_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
	UnitPrice int64 `json:"unit_price" binding:"omitempty,min=0"`
}

type submitAddress struct {
	Receiver string `json:"receiver" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Province string `json:"province"`
	City     string `json:"city"`
	Detail   string `json:"detail" binding:"required"`
}

type submitRequest struct {
	UserID     int64         `json:"user_id" binding:"required,min=1"`
	Type       string        `json:"type" binding:"omitempty,oneof=normal seckill groupbuy"`
	ActivityID int64         `json:"activity_id" binding:"omitempty,min=1"`
	Items      []submitItem  `json:"items" binding:"required,min=1,dive"`
	Address    submitAddress `json:"address" binding:"required"`
}

func (h *HTTPHandler) SubmitOrder(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
		return
	}

	order := domain.Order{
		UserID:     req.UserID,
		Type:       domain.OrderType(req.Type),
		ActivityID: req.ActivityID,
		Address: domain.Address{
			Receiver: req.Address.Receiver,
			Phone:    req.Address.Phone,
			Province: req.Address.Province,
			City:     req.Address.City,
			Detail:   req.Address.Detail,
		},
	}
	if order.Type == "" {
		order.Type = domain.OrderTypeNormal
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, domain.OrderItem{
			SkuID:     item.SkuID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	persisted, err := h.coordinator.Submit(c.Request.Context(), order)
	if err != nil {
		status, msg := mapSubmitError(err)
		c.JSON(status, gin.H{"code": status, "msg": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
		"order_no": persisted.OrderNo,
		"amount":   persisted.Amount,
		"status":   persisted.Status,
	}})
}

func mapSubmitError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrStockBusy):
		return http.StatusServiceUnavailable, "stock busy, please retry"
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusGone, "insufficient stock"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *HTTPHandler) GetStock(c *gin.Context) {
	pool, err := poolFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
		return
	}

	skuID := c.Query("sku_id")
	if _, err := strconv.ParseInt(skuID, 10, 64); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid sku_id"})
		return
	}

	remaining, ok, err := h.store.Remaining(c.Request.Context(), pool, skuID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "sku not in pool"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"remaining": remaining}})
}

type warmRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=global seckill groupbuy"`
	ActivityID int64  `json:"activity_id" binding:"omitempty,min=1"`
}

func (h *HTTPHandler) WarmPool(c *gin.Context) {
	var req warmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
		return
	}

	pool, err := buildPool(req.Kind, req.ActivityID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
		return
	}

	if err := h.warmer.WarmPool(c.Request.Context(), pool); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "pool warmed"})
}

func poolFromQuery(c *gin.Context) (domain.Pool, error) {
	kind := c.DefaultQuery("kind", string(domain.PoolGlobal))
	activityID, _ := strconv.ParseInt(c.Query("activity_id"), 10, 64)
	return buildPool(kind, activityID)
}

func buildPool(kind string, activityID int64) (domain.Pool, error) {
	switch domain.PoolKind(kind) {
	case domain.PoolGlobal:
		return domain.GlobalPool(), nil
	case domain.PoolSeckill:
		if activityID <= 0 {
			return domain.Pool{}, fmt.Errorf("seckill pool needs activity_id")
		}
		return domain.SeckillPool(activityID), nil
	case domain.PoolGroupBuy:
		if activityID <= 0 {
			return domain.Pool{}, fmt.Errorf("groupbuy pool needs activity_id")
		}
		return domain.GroupBuyPool(activityID), nil
	default:
		return domain.Pool{}, fmt.Errorf("unknown pool kind %q", kind)
	}
}
