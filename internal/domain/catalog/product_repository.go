package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopops/backend/internal/domain/shared"
)

// ProductRepository defines the persistence interface for products
type ProductRepository interface {
	// Create persists a new product
	Create(ctx context.Context, product *Product) error

	// FindByID retrieves a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU retrieves a product by its SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// Save persists changes to an existing product (non-stock fields)
	Save(ctx context.Context, product *Product) error

	// SaveStockWithLock persists a stock counter change using optimistic
	// locking: the update only applies when the stored version matches the
	// version the aggregate was loaded with. A lost race returns
	// shared.ErrConcurrencyConflict and the caller is expected to re-read
	// and retry, or roll back the enclosing transaction.
	SaveStockWithLock(ctx context.Context, product *Product) error

	// FindAll retrieves products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count returns the number of products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindBelowThreshold retrieves non-deleted products whose stock is
	// strictly below the given threshold, ordered by quantity ascending
	FindBelowThreshold(ctx context.Context, threshold int64) ([]Product, error)
}
