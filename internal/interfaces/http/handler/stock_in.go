package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apptrade "github.com/shopops/backend/internal/application/trade"
)

// StockInHandler serves the stock-in receipt endpoints
type StockInHandler struct {
	BaseHandler
	stockIn *apptrade.StockInService
}

// NewStockInHandler creates a stock-in handler
func NewStockInHandler(stockIn *apptrade.StockInService, logger *zap.Logger) *StockInHandler {
	return &StockInHandler{
		BaseHandler: NewBaseHandler(logger),
		stockIn:     stockIn,
	}
}

// Create handles POST /stock-in
func (h *StockInHandler) Create(c *gin.Context) {
	var req apptrade.CreateStockInOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	receipt, err := h.stockIn.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// Get handles GET /stock-in/:id
func (h *StockInHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	receipt, err := h.stockIn.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// List handles GET /stock-in
func (h *StockInHandler) List(c *gin.Context) {
	var filter apptrade.StockInListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receipts, total, err := h.stockIn.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, receipts, total, filter.Page, filter.PageSize)
}

// Confirm handles POST /stock-in/:id/confirm. Confirmation is the moment
// stock counters increase; a draft receipt has no inventory effect.
func (h *StockInHandler) Confirm(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	receipt, err := h.stockIn.Confirm(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// Cancel handles POST /stock-in/:id/cancel
func (h *StockInHandler) Cancel(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	receipt, err := h.stockIn.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// GetStats handles GET /stock-in/stats
func (h *StockInHandler) GetStats(c *gin.Context) {
	period, ok := h.parseStatsPeriod(c)
	if !ok {
		return
	}

	stats, err := h.stockIn.GetStats(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
