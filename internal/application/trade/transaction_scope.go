package trade

import (
	"context"

	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories the
// fulfillment flows touch. Order and stock-in confirmation must write the
// ledger status and the product stock counter atomically, so both services
// run their mutations through this scope.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the fulfillment repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
	// Orders returns the sales order repository scoped to the current transaction
	Orders() trade.OrderRepository
	// StockInOrders returns the stock-in repository scoped to the current transaction
	StockInOrders() trade.StockInOrderRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests running against in-memory repositories.
type NoOpTransactionScope struct {
	productRepo catalog.ProductRepository
	orderRepo   trade.OrderRepository
	stockInRepo trade.StockInOrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	orderRepo trade.OrderRepository,
	stockInRepo trade.StockInOrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		stockInRepo: stockInRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Products returns the product repository.
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.productRepo
}

// Orders returns the sales order repository.
func (s *NoOpTransactionScope) Orders() trade.OrderRepository {
	return s.orderRepo
}

// StockInOrders returns the stock-in repository.
func (s *NoOpTransactionScope) StockInOrders() trade.StockInOrderRepository {
	return s.stockInRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
