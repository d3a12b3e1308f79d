package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	upMarker          = "-- +migrate Up"
	downMarker        = "-- +migrate Down"
	NoLimitMigrations = 0 // no limit on the number of migrations to run
)

// Migration is one embedded SQL file containing an Up section and an optional Down section.
type Migration struct {
	ID  string
	SQL string
}

// RunMigrations opens the database described by cfg and applies all pending migrations.
func RunMigrations(cfg config.DatabaseConfig, migrations []Migration) error {
	db, err := NewSQLiteDBFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("error creating DB %w", err)
	}
	defer db.Close()

	return RunMigrationsDB(logger.GetDefaultLogger(), db, migrations)
}

// RunMigrationsDB applies all pending migrations on an already open database.
// Applied migrations are tracked by sql-migrate, so running it twice is harmless.
func RunMigrationsDB(log *logger.Logger, db *sql.DB, migrations []Migration) error {
	return RunMigrationsDBExtended(log, db, migrations, migrate.Up, NoLimitMigrations)
}

// RunMigrationsDBExtended runs migrations in the given direction.
// maxMigrations limits how many are applied; NoLimitMigrations applies all.
func RunMigrationsDBExtended(
	log *logger.Logger,
	db *sql.DB,
	migrations []Migration,
	dir migrate.MigrationDirection,
	maxMigrations int,
) error {
	source, err := memorySource(migrations)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(source.Migrations))
	for _, m := range source.Migrations {
		ids = append(ids, m.Id)
	}
	list := strings.Join(ids, ", ")

	log.Debugf("running migrations (max %d/%d): %s", maxMigrations, len(ids), list)

	applied, err := migrate.ExecMax(db, "sqlite3", source, dir, maxMigrations)
	if err != nil {
		return fmt.Errorf("error executing migrations (max %d/%d) %s: %w", maxMigrations, len(ids), list, err)
	}

	log.Infof("successfully ran %d migrations from: %s", applied, list)
	return nil
}

func memorySource(migrations []Migration) (*migrate.MemoryMigrationSource, error) {
	source := &migrate.MemoryMigrationSource{}

	for _, m := range migrations {
		parts := strings.Split(m.SQL, upMarker)
		if len(parts) != 2 { //nolint:mnd
			return nil, fmt.Errorf("migration %s must contain exactly one '%s' marker", m.ID, upMarker)
		}

		// the Down section precedes the Up marker
		down := strings.TrimSpace(strings.Replace(parts[0], downMarker, "", 1))
		up := strings.TrimSpace(parts[1])

		mig := &migrate.Migration{Id: m.ID, Up: []string{up}}
		if down != "" {
			mig.Down = []string{down}
		}
		source.Migrations = append(source.Migrations, mig)
	}

	return source, nil
}
