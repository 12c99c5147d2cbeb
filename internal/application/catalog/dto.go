package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopops/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU          string  `json:"sku" binding:"required,max=50"`
	Name         string  `json:"name" binding:"required,max=200"`
	Description  string  `json:"description" binding:"max=1000"`
	Unit         string  `json:"unit" binding:"max=20"`
	Price        float64 `json:"price" binding:"gte=0"`
	CostPrice    float64 `json:"cost_price" binding:"gte=0"`
	MinStock     int64   `json:"min_stock" binding:"gte=0"`
	MaxStock     int64   `json:"max_stock" binding:"gte=0"`
	InitialStock int64   `json:"initial_stock" binding:"gte=0"`
}

// UpdateProductRequest represents a request to update product master data.
// Stock is deliberately absent: counters only move through stock-in
// confirmations and order transitions.
type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=1000"`
	Unit        string  `json:"unit" binding:"max=20"`
	Price       float64 `json:"price" binding:"gte=0"`
	CostPrice   float64 `json:"cost_price" binding:"gte=0"`
	MinStock    int64   `json:"min_stock" binding:"gte=0"`
	MaxStock    int64   `json:"max_stock" binding:"gte=0"`
}

// UpdatePricesRequest represents a request to change selling and cost prices
type UpdatePricesRequest struct {
	Price     float64 `json:"price" binding:"gte=0"`
	CostPrice float64 `json:"cost_price" binding:"gte=0"`
}

// UpdateThresholdsRequest represents a request to change stock thresholds
type UpdateThresholdsRequest struct {
	MinStock int64 `json:"min_stock" binding:"gte=0"`
	MaxStock int64 `json:"max_stock" binding:"gte=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Unit          string    `json:"unit"`
	Price         string    `json:"price"`
	CostPrice     string    `json:"cost_price"`
	StockQuantity int64     `json:"stock_quantity"`
	MinStock      int64     `json:"min_stock"`
	MaxStock      int64     `json:"max_stock"`
	Status        string    `json:"status"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductListFilter defines filtering options for listing products
type ProductListFilter struct {
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir"`
	Search   string  `form:"search"`
	Status   *string `form:"status"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            product.ID,
		SKU:           product.SKU,
		Name:          product.Name,
		Description:   product.Description,
		Unit:          product.Unit,
		Price:         product.Price.String(),
		CostPrice:     product.CostPrice.String(),
		StockQuantity: product.StockQuantity,
		MinStock:      product.MinStock,
		MaxStock:      product.MaxStock,
		Status:        product.Status.String(),
		Version:       product.Version,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products to response DTOs
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses
}
