package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/trade"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists a new order with its items
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID finds an order by its ID, items included
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
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

// Save persists a status or payment transition with optimistic locking.
// Items are immutable after creation and are never written here. The
// transition already incremented the version in memory, so the row must
// still hold the version the order was loaded with.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	expectedVersion := order.Version - 1
	result := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"final_amount":   order.FinalAmount,
			"note":           order.Note,
			"confirmed_at":   order.ConfirmedAt,
			"completed_at":   order.CompletedAt,
			"cancelled_at":   order.CancelledAt,
			"version":        order.Version,
			"updated_at":     order.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindAll finds orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*trade.Order, error) {
	var orders []*trade.Order
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Order{}), filter)

	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&trade.Order{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetStats aggregates counters over the sales ledger. Revenue only counts
// fulfilled orders so cancelled drafts never inflate it.
func (r *GormOrderRepository) GetStats(ctx context.Context, period trade.DateRange) (*trade.OrderStats, error) {
	var stats trade.OrderStats
	query := r.db.WithContext(ctx).Model(&trade.Order{})
	if period.From != nil {
		query = query.Where("created_at >= ?", *period.From)
	}
	if period.To != nil {
		query = query.Where("created_at <= ?", *period.To)
	}
	err := query.
		Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(final_amount) FILTER (WHERE status IN ?), 0) AS total_revenue,
			COUNT(*) FILTER (WHERE status = ?) AS draft,
			COUNT(*) FILTER (WHERE status = ?) AS confirmed,
			COUNT(*) FILTER (WHERE status = ?) AS completed,
			COUNT(*) FILTER (WHERE status = ?) AS cancelled`,
			[]trade.OrderStatus{trade.OrderStatusConfirmed, trade.OrderStatusCompleted},
			trade.OrderStatusDraft,
			trade.OrderStatusConfirmed,
			trade.OrderStatusCompleted,
			trade.OrderStatusCancelled,
		).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// applyFilter applies filter conditions, ordering and pagination
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query.Offset(filter.Offset()).Limit(filter.Limit())
}

// applyFilterWithoutPagination applies filter conditions only
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "date_from":
			query = query.Where("created_at >= ?", value)
		case "date_to":
			query = query.Where("created_at <= ?", value)
		}
	}

	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
