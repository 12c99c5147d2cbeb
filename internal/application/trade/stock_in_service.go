package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/shared/valueobject"
	"github.com/shopops/backend/internal/domain/trade"
)

// openingStockSupplier labels the receipts that seed a product's initial
// stock; there is no external supplier behind them.
const openingStockSupplier = "Opening balance"

// StockInService coordinates the inbound ledger with the product stock
// counters. Confirming a receipt increases the counters in the same
// transaction as the status write.
type StockInService struct {
	scope   TransactionScope
	logger  *zap.Logger
	metrics FlowMetrics
}

// NewStockInService creates a new StockInService
func NewStockInService(scope TransactionScope, logger *zap.Logger) *StockInService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockInService{
		scope:  scope,
		logger: logger,
	}
}

// SetMetrics attaches a flow metrics recorder. Must be called before the
// service starts handling requests.
func (s *StockInService) SetMetrics(metrics FlowMetrics) {
	s.metrics = metrics
}

// Create creates a new draft stock-in receipt. A zero unit cost falls back
// to the product's catalog cost price.
func (s *StockInService) Create(ctx context.Context, createdBy uuid.UUID, req CreateStockInOrderRequest) (*StockInOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Receipt must contain at least one item")
	}

	var response *StockInOrderResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := trade.NewStockInOrder(createdBy, req.SupplierName)
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

			unitCost := valueobject.NewMoneyVNDFromFloat(item.UnitCost)
			if unitCost.IsZero() {
				unitCost = product.GetCostPriceMoney()
			}
			if _, err := order.AddItem(product.ID, product.Name, item.Quantity, unitCost); err != nil {
				return err
			}
		}

		if err := repos.StockInOrders().Create(ctx, order); err != nil {
			return err
		}

		resp := ToStockInOrderResponse(order)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock-in order created",
		zap.String("stock_in_id", response.ID.String()),
		zap.Int("items", len(response.Items)),
		zap.String("total_amount", response.TotalAmount))
	return response, nil
}

// Confirm transitions a receipt to confirmed and increases product stock
// counters in the same transaction. Lost optimistic-lock races on a counter
// are retried a bounded number of times. Confirming an already-confirmed
// receipt succeeds without side effects.
func (s *StockInService) Confirm(ctx context.Context, stockInID uuid.UUID) (*StockInOrderResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		response, err := s.tryConfirm(ctx, stockInID)
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
		s.logger.Warn("stock counter conflict, retrying stock-in confirmation",
			zap.String("stock_in_id", stockInID.String()),
			zap.Int("attempt", attempt+1))
	}
	return nil, lastErr
}

func (s *StockInService) tryConfirm(ctx context.Context, stockInID uuid.UUID) (*StockInOrderResponse, error) {
	var response *StockInOrderResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.StockInOrders().FindByID(ctx, stockInID)
		if err != nil {
			return err
		}

		// Duplicate submission.
		if order.Status == trade.StockInStatusConfirmed {
			resp := ToStockInOrderResponse(order)
			response = &resp
			return nil
		}

		if err := order.Confirm(); err != nil {
			return err
		}

		for _, item := range order.Items {
			product, err := repos.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := product.ReceiveStock(item.Quantity); err != nil {
				return err
			}
			if err := repos.Products().SaveStockWithLock(ctx, product); err != nil {
				return err
			}
		}

		if err := repos.StockInOrders().Save(ctx, order); err != nil {
			return err
		}

		resp := ToStockInOrderResponse(order)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordStockInConfirmed(ctx)
	}
	s.logger.Info("stock-in order confirmed",
		zap.String("stock_in_id", stockInID.String()),
		zap.String("total_amount", response.TotalAmount))
	return response, nil
}

// SeedInitialStock records opening stock for a newly created product as a
// regular confirmed receipt valued at the product's cost price. Going
// through the ledger keeps the counters reconstructable from day one.
func (s *StockInService) SeedInitialStock(ctx context.Context, createdBy, productID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Initial stock must be positive")
	}

	created, err := s.Create(ctx, createdBy, CreateStockInOrderRequest{
		SupplierName: openingStockSupplier,
		Note:         "Initial stock",
		Items: []CreateStockInItemRequest{
			{ProductID: productID, Quantity: quantity},
		},
	})
	if err != nil {
		return err
	}
	_, err = s.Confirm(ctx, created.ID)
	return err
}

// Cancel cancels a draft receipt. Confirmed receipts are immutable ledger
// evidence and cannot be cancelled.
func (s *StockInService) Cancel(ctx context.Context, stockInID uuid.UUID) (*StockInOrderResponse, error) {
	var response *StockInOrderResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.StockInOrders().FindByID(ctx, stockInID)
		if err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}
		if err := repos.StockInOrders().Save(ctx, order); err != nil {
			return err
		}

		resp := ToStockInOrderResponse(order)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock-in order cancelled", zap.String("stock_in_id", stockInID.String()))
	return response, nil
}

// GetByID retrieves a stock-in receipt by ID
func (s *StockInService) GetByID(ctx context.Context, stockInID uuid.UUID) (*StockInOrderResponse, error) {
	var response *StockInOrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.StockInOrders().FindByID(ctx, stockInID)
		if err != nil {
			return err
		}
		resp := ToStockInOrderResponse(order)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// List retrieves stock-in receipts with filtering and pagination
func (s *StockInService) List(ctx context.Context, filter StockInListFilter) ([]StockInOrderResponse, int64, error) {
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
	if filter.SupplierName != nil {
		domainFilter.Filters["supplier_name"] = *filter.SupplierName
	}

	var (
		responses []StockInOrderResponse
		total     int64
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.StockInOrders().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		count, err := repos.StockInOrders().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		responses = ToStockInOrderResponses(orders)
		total = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// GetStats returns aggregate inbound counters, optionally bounded by a
// creation date range
func (s *StockInService) GetStats(ctx context.Context, period trade.DateRange) (*StockInStatsResponse, error) {
	var response *StockInStatsResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		stats, err := repos.StockInOrders().GetStats(ctx, period)
		if err != nil {
			return err
		}
		resp := ToStockInStatsResponse(stats)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
