// Package repo implements the persistence layer of the console: the SQLite
// handle, key/value storage backing the cache store and the read watermark,
// and idempotency records for ticket creation.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/rental-console/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist or has expired.
	ErrNotFound = gorm.ErrRecordNotFound

	// ErrDuplicate means an idempotency record already exists for the key.
	ErrDuplicate = errors.New("duplicate")
)

// pragmas applied to every connection handle, in order.
var pragmas = []string{
	"journal_mode=WAL",
	"synchronous=NORMAL",
	"foreign_keys=ON",
	"busy_timeout=5000",
}

const (
	maxConns        = 10
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 30 * time.Minute
)

// OpenSQLite opens or creates the SQLite database at path, tunes it and
// installs the OpenTelemetry tracing plugin. The parent directory must exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, fmt.Errorf("sqlite tracing: %w", err)
	}
	for _, p := range pragmas {
		if err := db.Exec("PRAGMA " + p).Error; err != nil {
			return nil, fmt.Errorf("sqlite pragma %s: %w", p, err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

// AutoMigrate creates or updates the console tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.StorageItem{}, &domain.Idempotency{})
}
