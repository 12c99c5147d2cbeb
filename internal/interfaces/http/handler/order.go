package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apptrade "github.com/shopops/backend/internal/application/trade"
	"github.com/shopops/backend/internal/domain/trade"
)

// OrderHandler serves the sales order endpoints
type OrderHandler struct {
	BaseHandler
	orders *apptrade.OrderService
}

// NewOrderHandler creates an order handler
func NewOrderHandler(orders *apptrade.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		orders:      orders,
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req apptrade.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter apptrade.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// UpdateStatus handles PUT /orders/:id/status. Confirming deducts stock,
// cancelling a confirmed order restores it.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req apptrade.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	target := trade.OrderStatus(req.Status)
	if !target.IsValid() {
		h.BadRequest(c, "Invalid order status: "+req.Status)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, target)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdatePaymentStatus handles PUT /orders/:id/payment-status
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req apptrade.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	target := trade.PaymentStatus(req.PaymentStatus)
	if !target.IsValid() {
		h.BadRequest(c, "Invalid payment status: "+req.PaymentStatus)
		return
	}

	order, err := h.orders.SetPaymentStatus(c.Request.Context(), id, target)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListByCustomer handles GET /customers/:id/orders
func (h *OrderHandler) ListByCustomer(c *gin.Context) {
	customerID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var filter apptrade.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, total, err := h.orders.ListByCustomer(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// GetStats handles GET /orders/stats
func (h *OrderHandler) GetStats(c *gin.Context) {
	period, ok := h.parseStatsPeriod(c)
	if !ok {
		return
	}

	stats, err := h.orders.GetStats(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
