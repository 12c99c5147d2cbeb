package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormProductRepository(gormDB), mock, mockDB
}

func TestGormProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "sku", "name", "unit", "stock_quantity", "status"}).
			AddRow(productID, 3, "SKU-001", "Widget", "pcs", int64(25), "active")

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		product, err := repo.FindByID(context.Background(), productID)

		assert.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, "SKU-001", product.SKU)
		assert.Equal(t, int64(25), product.StockQuantity)
		assert.Equal(t, 3, product.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing product to ErrNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByID(context.Background(), productID)

		assert.Nil(t, product)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindBySKU(t *testing.T) {
	t.Run("maps missing SKU to ErrNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE sku = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("NOPE", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindBySKU(context.Background(), "NOPE")

		assert.Nil(t, product)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_Save(t *testing.T) {
	newEditedProduct := func(t *testing.T) *catalog.Product {
		t.Helper()
		product, err := catalog.NewProduct(uuid.New(), "SKU-001", "Widget", "pcs")
		require.NoError(t, err)
		product.StockQuantity = 5 // simulates a row loaded with live stock
		require.NoError(t, product.Update("Widget XL", "", "pcs"))
		return product
	}

	t.Run("guards the write with the loaded version", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newEditedProduct(t)

		mock.ExpectExec(`UPDATE "products" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), product)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("never includes the stock counter in the SQL", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newEditedProduct(t)

		// Strict column list: a write set containing stock_quantity would
		// let a stale edit erase a concurrently committed deduction.
		mock.ExpectExec(`UPDATE "products" SET "cost_price"=\$\d+,"description"=\$\d+,"max_stock"=\$\d+,"min_stock"=\$\d+,"name"=\$\d+,"price"=\$\d+,"sku"=\$\d+,"status"=\$\d+,"unit"=\$\d+,"updated_at"=\$\d+,"version"=\$\d+ WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), product))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when the row moved on since the read", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newEditedProduct(t)

		mock.ExpectExec(`UPDATE "products" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), product)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_SaveStockWithLock(t *testing.T) {
	newVersionedProduct := func(t *testing.T) *catalog.Product {
		t.Helper()
		product, err := catalog.NewProduct(uuid.New(), "SKU-001", "Widget", "pcs")
		require.NoError(t, err)
		require.NoError(t, product.ReceiveStock(10)) // version 1 -> 2
		return product
	}

	t.Run("updates counter when version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newVersionedProduct(t)

		mock.ExpectExec(`UPDATE "products" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveStockWithLock(context.Background(), product)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when no row matches the expected version", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product := newVersionedProduct(t)

		mock.ExpectExec(`UPDATE "products" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveStockWithLock(context.Background(), product)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindBelowThreshold(t *testing.T) {
	t.Run("orders by quantity ascending and skips deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "sku", "stock_quantity", "status"}).
			AddRow(uuid.New(), "SKU-002", int64(0), "active").
			AddRow(uuid.New(), "SKU-001", int64(4), "active")

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE status <> \$1 AND stock_quantity < \$2 ORDER BY stock_quantity ASC`).
			WithArgs(catalog.ProductStatusDeleted, int64(10)).
			WillReturnRows(rows)

		products, err := repo.FindBelowThreshold(context.Background(), 10)

		assert.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, int64(0), products[0].StockQuantity)
		assert.Equal(t, int64(4), products[1].StockQuantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindAll(t *testing.T) {
	t.Run("applies status filter and pagination", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "sku", "status"}).
			AddRow(uuid.New(), "SKU-001", "active")

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 ORDER BY created_at DESC LIMIT .*`).
			WillReturnRows(rows)

		filter := shared.NewFilter()
		filter.Filters["status"] = "active"

		products, err := repo.FindAll(context.Background(), filter)

		assert.NoError(t, err)
		assert.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to created_at for unknown sort fields", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "products" ORDER BY created_at DESC LIMIT .*`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		filter := shared.NewFilter()
		filter.OrderBy = "price; DROP TABLE products"

		_, err := repo.FindAll(context.Background(), filter)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
