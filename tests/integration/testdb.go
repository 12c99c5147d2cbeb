// Package integration spins up real PostgreSQL containers and exercises the
// full stack: migrations, GORM repositories, and the application services.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestDB is a migrated PostgreSQL instance backed by a container
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	t     *testing.T

	container testcontainers.Container
}

// NewTestDB starts a fresh PostgreSQL container, applies all migrations, and
// registers cleanup with the test. Every call gets its own container, so
// tests are fully isolated from one another.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shopops_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "read container connection string")

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "connect gorm")

	sqlDB, err := db.DB()
	require.NoError(t, err)

	applyMigrations(t, sqlDB)

	tdb := &TestDB{DB: db, SqlDB: sqlDB, t: t, container: container}
	t.Cleanup(tdb.close)
	return tdb
}

// CleanTables truncates all data tables, keeping the schema and the
// migration bookkeeping intact
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	for _, table := range []string{"order_items", "orders", "stock_in_items", "stock_in_orders", "products"} {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error
		require.NoError(tdb.t, err, "truncate %s", table)
	}
}

func (tdb *TestDB) close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.container != nil {
		_ = tdb.container.Terminate(context.Background())
	}
}

func applyMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	require.NoError(t, err, "create migrate driver")

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsDir(t), "postgres", driver)
	require.NoError(t, err, "create migrator")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("apply migrations: %v", err)
	}
}

// migrationsDir locates the migrations directory relative to this file so
// the tests work regardless of the working directory
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "resolve caller path")
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}
