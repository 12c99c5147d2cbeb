package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to
// DESC, so user input never reaches the ORDER BY clause unchecked.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates a sort field against a whitelist, falling back
// to defaultField for anything not explicitly allowed
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"sku":            true,
	"name":           true,
	"price":          true,
	"cost_price":     true,
	"stock_quantity": true,
	"min_stock":      true,
	"max_stock":      true,
	"status":         true,
}

// OrderSortFields contains allowed sort fields for sales orders
var OrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"status":         true,
	"payment_status": true,
	"final_amount":   true,
	"confirmed_at":   true,
	"completed_at":   true,
}

// StockInSortFields contains allowed sort fields for stock-in orders
var StockInSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"status":        true,
	"supplier_name": true,
	"total_amount":  true,
	"confirmed_at":  true,
}
