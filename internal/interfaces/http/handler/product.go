package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcatalog "github.com/shopops/backend/internal/application/catalog"
)

// ProductHandler serves the product catalog endpoints
type ProductHandler struct {
	BaseHandler
	products *appcatalog.ProductService
}

// NewProductHandler creates a product handler
func NewProductHandler(products *appcatalog.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		BaseHandler: NewBaseHandler(logger),
		products:    products,
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	product, err := h.products.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetBySKU handles GET /products/sku/:sku
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		h.BadRequest(c, "SKU is required")
		return
	}

	product, err := h.products.GetBySKU(c.Request.Context(), sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var filter appcatalog.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdatePrices handles PUT /products/:id/prices
func (h *ProductHandler) UpdatePrices(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req appcatalog.UpdatePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.UpdatePrices(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateThresholds handles PUT /products/:id/thresholds
func (h *ProductHandler) UpdateThresholds(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req appcatalog.UpdateThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.SetThresholds(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Activate handles POST /products/:id/activate
func (h *ProductHandler) Activate(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.products.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Deactivate handles POST /products/:id/deactivate
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.products.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
