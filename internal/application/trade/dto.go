package trade

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopops/backend/internal/domain/trade"
)

// CreateOrderItemRequest represents a line item in an order creation request.
// The unit price is intentionally absent: prices are taken from the catalog
// at creation time, never from the caller.
type CreateOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest represents a request to create a sales order
type CreateOrderRequest struct {
	CustomerID *uuid.UUID               `json:"customer_id"`
	Note       string                   `json:"note" binding:"max=500"`
	Items      []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest represents a request to transition an order
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentStatusRequest represents a request to change payment state
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// OrderItemResponse represents a line item in API responses
type OrderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	TotalPrice  string    `json:"total_price"`
}

// OrderResponse represents a sales order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	FinalAmount   string              `json:"final_amount"`
	Note          string              `json:"note,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Version       int                 `json:"version"`
	ConfirmedAt   *time.Time          `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderListFilter defines filtering options for listing orders
type OrderListFilter struct {
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir"`
	Status        *string    `form:"status"`
	PaymentStatus *string    `form:"payment_status"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	DateFrom      *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(order *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			TotalPrice:  item.TotalPrice.String(),
		})
	}

	return OrderResponse{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus.String(),
		FinalAmount:   order.FinalAmount.String(),
		Note:          order.Note,
		Items:         items,
		Version:       order.Version,
		ConfirmedAt:   order.ConfirmedAt,
		CompletedAt:   order.CompletedAt,
		CancelledAt:   order.CancelledAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders to response DTOs
func ToOrderResponses(orders []*trade.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, ToOrderResponse(order))
	}
	return responses
}

// OrderStatsResponse represents sales ledger aggregate counters
type OrderStatsResponse struct {
	TotalOrders  int64  `json:"total_orders"`
	TotalRevenue string `json:"total_revenue"`
	Draft        int64  `json:"draft"`
	Confirmed    int64  `json:"confirmed"`
	Completed    int64  `json:"completed"`
	Cancelled    int64  `json:"cancelled"`
}

// ToOrderStatsResponse converts domain stats to a response DTO
func ToOrderStatsResponse(stats *trade.OrderStats) OrderStatsResponse {
	return OrderStatsResponse{
		TotalOrders:  stats.TotalOrders,
		TotalRevenue: stats.TotalRevenue.String(),
		Draft:        stats.Draft,
		Confirmed:    stats.Confirmed,
		Completed:    stats.Completed,
		Cancelled:    stats.Cancelled,
	}
}

// CreateStockInItemRequest represents a line item in a stock-in creation request
type CreateStockInItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
	UnitCost  float64   `json:"unit_cost" binding:"gte=0"`
}

// CreateStockInOrderRequest represents a request to create a stock-in receipt
type CreateStockInOrderRequest struct {
	SupplierName string                     `json:"supplier_name" binding:"required,max=200"`
	Note         string                     `json:"note" binding:"max=500"`
	Items        []CreateStockInItemRequest `json:"items" binding:"required,min=1,dive"`
}

// StockInItemResponse represents a stock-in line item in API responses
type StockInItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	UnitCost    string    `json:"unit_cost"`
	TotalPrice  string    `json:"total_price"`
}

// StockInOrderResponse represents a stock-in receipt in API responses
type StockInOrderResponse struct {
	ID           uuid.UUID             `json:"id"`
	SupplierName string                `json:"supplier_name,omitempty"`
	Status       string                `json:"status"`
	TotalAmount  string                `json:"total_amount"`
	Note         string                `json:"note,omitempty"`
	Items        []StockInItemResponse `json:"items"`
	Version      int                   `json:"version"`
	ConfirmedAt  *time.Time            `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// StockInListFilter defines filtering options for listing stock-in receipts
type StockInListFilter struct {
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
	OrderBy      string  `form:"order_by"`
	OrderDir     string  `form:"order_dir"`
	Status       *string `form:"status"`
	SupplierName *string `form:"supplier_name"`
}

// ToStockInOrderResponse converts a domain stock-in order to a response DTO
func ToStockInOrderResponse(order *trade.StockInOrder) StockInOrderResponse {
	items := make([]StockInItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, StockInItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost.String(),
			TotalPrice:  item.TotalPrice.String(),
		})
	}

	return StockInOrderResponse{
		ID:           order.ID,
		SupplierName: order.SupplierName,
		Status:       order.Status.String(),
		TotalAmount:  order.TotalAmount.String(),
		Note:         order.Note,
		Items:        items,
		Version:      order.Version,
		ConfirmedAt:  order.ConfirmedAt,
		CancelledAt:  order.CancelledAt,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

// ToStockInOrderResponses converts a slice of domain stock-in orders to response DTOs
func ToStockInOrderResponses(orders []*trade.StockInOrder) []StockInOrderResponse {
	responses := make([]StockInOrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, ToStockInOrderResponse(order))
	}
	return responses
}

// StockInStatsResponse represents inbound ledger aggregate counters
type StockInStatsResponse struct {
	TotalOrders int64  `json:"total_orders"`
	TotalAmount string `json:"total_amount"`
	Draft       int64  `json:"draft"`
	Confirmed   int64  `json:"confirmed"`
	Cancelled   int64  `json:"cancelled"`
}

// ToStockInStatsResponse converts domain stats to a response DTO
func ToStockInStatsResponse(stats *trade.StockInStats) StockInStatsResponse {
	return StockInStatsResponse{
		TotalOrders: stats.TotalOrders,
		TotalAmount: stats.TotalAmount.String(),
		Draft:       stats.Draft,
		Confirmed:   stats.Confirmed,
		Cancelled:   stats.Cancelled,
	}
}
