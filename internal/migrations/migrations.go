package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/FlashBatcher/internal/db"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
)

//go:embed 001_batches.sql
var mig001 string

// All returns the batch store migrations in apply order.
func All() []db.Migration {
	return []db.Migration{
		{
			ID:  "001_batches.sql",
			SQL: mig001,
		},
	}
}

// RunMigrations brings the database at cfg.Path up to date.
func RunMigrations(cfg config.DatabaseConfig) error {
	return db.RunMigrations(cfg, All())
}

// RunMigrationsDB brings an already open database up to date.
func RunMigrationsDB(log *logger.Logger, sqlDB *sql.DB) error {
	return db.RunMigrationsDB(log, sqlDB, All())
}
