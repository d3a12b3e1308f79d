package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goran-ethernal/FlashBatcher/pkg/config"
	sqlite "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
)

// NewSQLiteDB creates a new SQLite DB with default settings.
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	cfg := config.DatabaseConfig{Path: dbPath}
	cfg.ApplyDefaults()
	return NewSQLiteDBFromConfig(cfg)
}

// NewSQLiteDBFromConfig creates a new SQLite DB with the given configuration.
// Path may be a plain file path or a "file:" connection string; in the latter
// case the caller's query parameters are kept and ours are appended.
func NewSQLiteDBFromConfig(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)

	pragmas := []string{
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.Synchronous),
		fmt.Sprintf("PRAGMA cache_size = %d", cfg.CacheSize),
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	return db, nil
}

func connectionString(cfg config.DatabaseConfig) string {
	params := fmt.Sprintf("_txlock=immediate&_journal_mode=%s&_busy_timeout=%d",
		cfg.JournalMode,
		cfg.BusyTimeout,
	)

	if strings.HasPrefix(cfg.Path, "file:") {
		sep := "?"
		if strings.Contains(cfg.Path, "?") {
			sep = "&"
		}
		return cfg.Path + sep + params
	}

	return fmt.Sprintf("file:%s?%s", cfg.Path, params)
}

// SQLiteErr extracts the sqlite driver error from err, also looking through meddler wrapping.
func SQLiteErr(err error) (*sqlite.Error, bool) {
	sqliteErr := &sqlite.Error{}
	if ok := errors.As(err, sqliteErr); ok {
		return sqliteErr, true
	}
	if driverErr, ok := meddler.DriverErr(err); ok {
		return sqliteErr, errors.As(driverErr, sqliteErr)
	}
	return sqliteErr, false
}

// IsUniqueViolation reports whether err is a primary key or unique constraint failure.
func IsUniqueViolation(err error) bool {
	sqliteErr, ok := SQLiteErr(err)
	if !ok {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite.ErrConstraintUnique
}
