package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create persists a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKU finds a product by its SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Save persists master data changes with optimistic locking. The stock
// counter is never in the write set here: a stale in-memory copy must not
// overwrite a deduction committed by SaveStockWithLock in the meantime, and
// the version guard rejects the write outright when the row moved on.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	expectedVersion := product.Version - 1
	result := r.db.WithContext(ctx).
		Model(product).
		Where("id = ? AND version = ?", product.ID, expectedVersion).
		Updates(map[string]interface{}{
			"sku":         product.SKU,
			"name":        product.Name,
			"description": product.Description,
			"unit":        product.Unit,
			"price":       product.Price,
			"cost_price":  product.CostPrice,
			"min_stock":   product.MinStock,
			"max_stock":   product.MaxStock,
			"status":      product.Status,
			"version":     product.Version,
			"updated_at":  product.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveStockWithLock persists a stock counter change with optimistic locking.
// The product was loaded at version-1 and the mutator incremented the version,
// so the update matches only if nobody else wrote the row in between.
func (r *GormProductRepository) SaveStockWithLock(ctx context.Context, product *catalog.Product) error {
	expectedVersion := product.Version - 1
	result := r.db.WithContext(ctx).
		Model(product).
		Where("id = ? AND version = ?", product.ID, expectedVersion).
		Updates(map[string]interface{}{
			"stock_quantity": product.StockQuantity,
			"version":        product.Version,
			"updated_at":     product.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindAll finds products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindBelowThreshold finds non-deleted products whose counter is strictly
// below the threshold, lowest stock first
func (r *GormProductRepository) FindBelowThreshold(ctx context.Context, threshold int64) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("status <> ? AND stock_quantity < ?", catalog.ProductStatusDeleted, threshold).
		Order("stock_quantity ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// applyFilter applies filter conditions, ordering and pagination
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query.Offset(filter.Offset()).Limit(filter.Limit())
}

// applyFilterWithoutPagination applies filter conditions only
func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("sku ILIKE ? OR name ILIKE ?", search, search)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "exclude_status":
			query = query.Where("status <> ?", value)
		case "unit":
			query = query.Where("unit = ?", value)
		case "min_price":
			query = query.Where("price >= ?", value)
		case "max_price":
			query = query.Where("price <= ?", value)
		}
	}

	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
