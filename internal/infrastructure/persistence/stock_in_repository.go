package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/trade"
)

// GormStockInOrderRepository implements trade.StockInOrderRepository using GORM
type GormStockInOrderRepository struct {
	db *gorm.DB
}

// NewGormStockInOrderRepository creates a new GormStockInOrderRepository
func NewGormStockInOrderRepository(db *gorm.DB) *GormStockInOrderRepository {
	return &GormStockInOrderRepository{db: db}
}

// Create persists a new stock-in order with its items
func (r *GormStockInOrderRepository) Create(ctx context.Context, order *trade.StockInOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID finds a stock-in order by its ID, items included
func (r *GormStockInOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.StockInOrder, error) {
	var order trade.StockInOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Save persists a status transition with optimistic locking. Items are
// immutable after creation and are never written here.
func (r *GormStockInOrderRepository) Save(ctx context.Context, order *trade.StockInOrder) error {
	expectedVersion := order.Version - 1
	result := r.db.WithContext(ctx).
		Model(&trade.StockInOrder{}).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"total_amount": order.TotalAmount,
			"note":         order.Note,
			"confirmed_at": order.ConfirmedAt,
			"cancelled_at": order.CancelledAt,
			"version":      order.Version,
			"updated_at":   order.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindAll finds stock-in orders matching the filter
func (r *GormStockInOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*trade.StockInOrder, error) {
	var orders []*trade.StockInOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.StockInOrder{}), filter)

	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts stock-in orders matching the filter
func (r *GormStockInOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&trade.StockInOrder{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetStats aggregates counters over the inbound ledger. Only confirmed
// receipts contribute to the total amount.
func (r *GormStockInOrderRepository) GetStats(ctx context.Context, period trade.DateRange) (*trade.StockInStats, error) {
	var stats trade.StockInStats
	query := r.db.WithContext(ctx).Model(&trade.StockInOrder{})
	if period.From != nil {
		query = query.Where("created_at >= ?", *period.From)
	}
	if period.To != nil {
		query = query.Where("created_at <= ?", *period.To)
	}
	err := query.
		Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(total_amount) FILTER (WHERE status = ?), 0) AS total_amount,
			COUNT(*) FILTER (WHERE status = ?) AS draft,
			COUNT(*) FILTER (WHERE status = ?) AS confirmed,
			COUNT(*) FILTER (WHERE status = ?) AS cancelled`,
			trade.StockInStatusConfirmed,
			trade.StockInStatusDraft,
			trade.StockInStatusConfirmed,
			trade.StockInStatusCancelled,
		).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// applyFilter applies filter conditions, ordering and pagination
func (r *GormStockInOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, StockInSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query.Offset(filter.Offset()).Limit(filter.Limit())
}

// applyFilterWithoutPagination applies filter conditions only
func (r *GormStockInOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("supplier_name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "supplier_name":
			query = query.Where("supplier_name = ?", value)
		}
	}

	return query
}

// Ensure GormStockInOrderRepository implements StockInOrderRepository
var _ trade.StockInOrderRepository = (*GormStockInOrderRepository)(nil)
