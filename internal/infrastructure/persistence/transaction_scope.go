package persistence

import (
	"context"

	"gorm.io/gorm"

	apptrade "github.com/shopops/backend/internal/application/trade"
	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/trade"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Status writes and stock counter writes issued through the same scope call
// commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Products returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Orders returns the sales order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// StockInOrders returns the stock-in repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockInOrders() trade.StockInOrderRepository {
	return NewGormStockInOrderRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apptrade.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
