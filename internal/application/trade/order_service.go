package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/shared/valueobject"
	"github.com/shopops/backend/internal/domain/trade"
)

// maxConflictRetries bounds how many times a status transition is retried
// after losing an optimistic-lock race on a product stock counter.
const maxConflictRetries = 3

// FlowMetrics receives document flow events for monitoring. Implementations
// must be safe for concurrent use; a nil FlowMetrics disables recording.
type FlowMetrics interface {
	RecordOrderCreated(ctx context.Context)
	RecordOrderConfirmed(ctx context.Context)
	RecordOrderCancelled(ctx context.Context)
	RecordStockInConfirmed(ctx context.Context)
	RecordStockConflict(ctx context.Context)
}

// OrderService coordinates the sales ledger with the product stock counters.
// Every transition that has a stock effect (confirm, cancel-after-confirm)
// writes the order status and the affected counters in one transaction.
type OrderService struct {
	scope   TransactionScope
	logger  *zap.Logger
	metrics FlowMetrics
}

// NewOrderService creates a new OrderService
func NewOrderService(scope TransactionScope, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		scope:  scope,
		logger: logger,
	}
}

// SetMetrics attaches a flow metrics recorder. Must be called before the
// service starts handling requests.
func (s *OrderService) SetMetrics(metrics FlowMetrics) {
	s.metrics = metrics
}

// Create creates a new draft order. Prices are read from the catalog at this
// moment and frozen into the items; availability is checked as a courtesy but
// only confirmation actually reserves stock.
func (s *OrderService) Create(ctx context.Context, createdBy uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}

	var response *OrderResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := trade.NewOrder(createdBy, req.CustomerID)
		if err != nil {
			return err
		}
		if req.Note != "" {
			order.SetNote(req.Note)
		}

		for _, item := range req.Items {
			product, err := repos.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.IsDeleted() {
				return shared.NewDomainError("PRODUCT_DELETED",
					fmt.Sprintf("Product %s has been deleted", product.SKU))
			}
			if !product.IsActive() {
				return shared.NewDomainError("INVALID_INPUT",
					fmt.Sprintf("Product %s is not available for sale", product.SKU))
			}
			if product.StockQuantity < item.Quantity {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Product %s has %d in stock, requested %d",
						product.SKU, product.StockQuantity, item.Quantity))
			}

			price := valueobject.NewMoneyVND(product.Price)
			if _, err := order.AddItem(product.ID, product.Name, item.Quantity, price); err != nil {
				return err
			}
		}

		if err := repos.Orders().Create(ctx, order); err != nil {
			return err
		}

		resp := ToOrderResponse(order)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx)
	}
	s.logger.Info("order created",
		zap.String("order_id", response.ID.String()),
		zap.Int("items", len(response.Items)),
		zap.String("final_amount", response.FinalAmount))
	return response, nil
}

// UpdateStatus applies a status transition to an order. Transitions with a
// stock effect retry a bounded number of times when a concurrent writer wins
// the optimistic-lock race on a product counter; each attempt re-reads the
// order and the products inside a fresh transaction. Requesting the status
// the order already has is treated as a completed duplicate and succeeds
// without side effects.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target trade.OrderStatus) (*OrderResponse, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid order status: %s", target))
	}

	var lastErr error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		response, err := s.tryUpdateStatus(ctx, orderID, target)
		if err == nil {
			return response, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
		if s.metrics != nil {
			s.metrics.RecordStockConflict(ctx)
		}
		s.logger.Warn("stock counter conflict, retrying status transition",
			zap.String("order_id", orderID.String()),
			zap.String("target_status", target.String()),
			zap.Int("attempt", attempt+1))
	}
	return nil, lastErr
}

func (s *OrderService) tryUpdateStatus(ctx context.Context, orderID uuid.UUID, target trade.OrderStatus) (*OrderResponse, error) {
	var response *OrderResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		// Duplicate submission of the same transition.
		if order.Status == target {
			resp := ToOrderResponse(order)
			response = &resp
			return nil
		}

		switch target {
		case trade.OrderStatusConfirmed:
			if err := order.Confirm(); err != nil {
				return err
			}
			if err := s.deductStock(ctx, repos.Products(), order); err != nil {
				return err
			}
		case trade.OrderStatusCompleted:
			if err := order.Complete(); err != nil {
				return err
			}
		case trade.OrderStatusCancelled:
			wasFulfilled, err := order.Cancel()
			if err != nil {
				return err
			}
			if wasFulfilled {
				if err := s.restock(ctx, repos.Products(), order); err != nil {
					return err
				}
			}
		default:
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot transition order to %s", target))
		}

		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}

		resp := ToOrderResponse(order)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		switch trade.OrderStatus(response.Status) {
		case trade.OrderStatusConfirmed:
			s.metrics.RecordOrderConfirmed(ctx)
		case trade.OrderStatusCancelled:
			s.metrics.RecordOrderCancelled(ctx)
		}
	}
	s.logger.Info("order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", response.Status))
	return response, nil
}

// Cancel cancels an order, restocking if it had been confirmed
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.UpdateStatus(ctx, orderID, trade.OrderStatusCancelled)
}

// SetPaymentStatus applies a payment transition. Payment has no stock effect
// so no counter writes happen here.
func (s *OrderService) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, target trade.PaymentStatus) (*OrderResponse, error) {
	var response *OrderResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.SetPaymentStatus(target); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}

		resp := ToOrderResponse(order)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var response *OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		resp := ToOrderResponse(order)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := shared.NewFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.PaymentStatus != nil {
		domainFilter.Filters["payment_status"] = *filter.PaymentStatus
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		// A plain date bound covers the whole day.
		domainFilter.Filters["date_to"] = filter.DateTo.Add(24*time.Hour - time.Nanosecond)
	}

	var (
		responses []OrderResponse
		total     int64
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.Orders().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		count, err := repos.Orders().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		responses = ToOrderResponses(orders)
		total = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// ListByCustomer retrieves one customer's orders, paged
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	filter.CustomerID = &customerID
	return s.List(ctx, filter)
}

// GetStats returns aggregate sales counters, optionally bounded by a
// creation date range
func (s *OrderService) GetStats(ctx context.Context, period trade.DateRange) (*OrderStatsResponse, error) {
	var response *OrderStatsResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		stats, err := repos.Orders().GetStats(ctx, period)
		if err != nil {
			return err
		}
		resp := ToOrderStatsResponse(stats)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// deductStock decrements stock counters for every item under optimistic
// locking. Runs inside the same transaction as the order status write, so a
// conflict on any product rolls the whole transition back.
func (s *OrderService) deductStock(ctx context.Context, products catalog.ProductRepository, order *trade.Order) error {
	for _, item := range order.Items {
		product, err := products.FindByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := product.DeductStock(item.Quantity); err != nil {
			return err
		}
		if err := products.SaveStockWithLock(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

// restock returns previously deducted quantities after a cancellation
func (s *OrderService) restock(ctx context.Context, products catalog.ProductRepository, order *trade.Order) error {
	for _, item := range order.Items {
		product, err := products.FindByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := product.ReceiveStock(item.Quantity); err != nil {
			return err
		}
		if err := products.SaveStockWithLock(ctx, product); err != nil {
			return err
		}
	}
	return nil
}
