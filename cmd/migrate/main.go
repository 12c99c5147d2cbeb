package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/shopops/backend/internal/infrastructure/config"
	"github.com/shopops/backend/internal/infrastructure/logger"
	"github.com/shopops/backend/internal/infrastructure/migration"
)

func main() {
	var (
		path    = flag.String("path", "migrations", "path to migration files")
		steps   = flag.Int("steps", 0, "number of migrations to apply (negative rolls back)")
		down    = flag.Bool("down", false, "roll back all migrations")
		force   = flag.Int("force", -1, "force the schema version without running migrations")
		version = flag.Bool("version", false, "print the current schema version and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	migrator, err := migration.NewFromURL(cfg.Database.DSN(), *path, log)
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	switch {
	case *version:
		v, dirty, err := migrator.Version()
		if err != nil {
			log.Fatal("failed to read schema version", zap.Error(err))
		}
		fmt.Printf("version: %d dirty: %v\n", v, dirty)
	case *force >= 0:
		if err := migrator.Force(*force); err != nil {
			log.Fatal("failed to force schema version", zap.Error(err))
		}
		log.Info("schema version forced", zap.Int("version", *force))
	case *steps != 0:
		if err := migrator.Steps(*steps); err != nil {
			log.Fatal("migration steps failed", zap.Error(err))
		}
		log.Info("migration steps applied", zap.Int("steps", *steps))
	case *down:
		if err := migrator.Down(); err != nil {
			log.Fatal("rollback failed", zap.Error(err))
		}
		log.Info("all migrations rolled back")
	default:
		if err := migrator.Up(); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations applied")
	}
}
