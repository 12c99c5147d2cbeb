package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/shopops/backend/internal/application/inventory"
)

// InventoryHandler serves the stock level and reconstruction endpoints
type InventoryHandler struct {
	BaseHandler
	inventory *appinventory.InventoryService
}

// NewInventoryHandler creates an inventory handler
func NewInventoryHandler(inventory *appinventory.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: NewBaseHandler(logger),
		inventory:   inventory,
	}
}

// Levels handles GET /inventory/levels
func (h *InventoryHandler) Levels(c *gin.Context) {
	var filter appinventory.StockLevelListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	levels, total, err := h.inventory.CurrentLevels(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, levels, total, filter.Page, filter.PageSize)
}

// ProductLevel handles GET /inventory/levels/:id
func (h *InventoryHandler) ProductLevel(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	level, err := h.inventory.ProductLevel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// LowStock handles GET /inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	levels, err := h.inventory.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// Historical handles GET /inventory/historical. The as_of query parameter
// accepts RFC 3339 timestamps or plain dates; a plain date means end of
// that day, so the report covers everything confirmed on it.
func (h *InventoryHandler) Historical(c *gin.Context) {
	cutoff, ok := h.parseAsOf(c)
	if !ok {
		return
	}

	productID := uuid.Nil
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid product_id format")
			return
		}
		productID = id
	}

	report, err := h.inventory.HistoricalLevels(c.Request.Context(), cutoff, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ProductHistory handles GET /inventory/products/:id/history
func (h *InventoryHandler) ProductHistory(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var filter appinventory.MovementHistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, total, err := h.inventory.ProductHistory(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// Verify handles GET /inventory/verify
func (h *InventoryHandler) Verify(c *gin.Context) {
	report, err := h.inventory.VerifyCounters(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

func (h *InventoryHandler) parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		h.BadRequest(c, "as_of is required")
		return time.Time{}, false
	}

	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, true
	}
	if day, err := time.Parse("2006-01-02", raw); err == nil {
		return day.Add(24*time.Hour - time.Nanosecond), true
	}

	h.BadRequest(c, "as_of must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	return time.Time{}, false
}
