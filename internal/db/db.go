package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute

	defaultConnectTimeout = 5 * time.Second
)

// DB wraps a GORM database connection
type DB struct {
	*gorm.DB
}

// Options controls how the SQLite database is opened
type Options struct {
	// EnableWAL selects write-ahead logging; when false the database
	// uses SQLite's default rollback journal
	EnableWAL bool
	// ConnectTimeout bounds the initial connectivity check
	ConnectTimeout time.Duration
}

// New opens the SQLite database at dbPath with WAL enabled and the
// default connect timeout
func New(dbPath string) (*DB, error) {
	return NewWithOptions(dbPath, Options{
		EnableWAL:      true,
		ConnectTimeout: defaultConnectTimeout,
	})
}

// NewWithOptions opens the SQLite database at dbPath with the given
// options and verifies connectivity before returning
func NewWithOptions(dbPath string, opts Options) (*DB, error) {
	journalMode := "DELETE"
	if opts.EnableWAL {
		journalMode = "WAL"
	}
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=%s", dbPath, journalMode)

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		// Repositories manage their own transactions where they need them
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: gormDB}, nil
}

// Health checks database connectivity
func (db *DB) Health(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// GetSQLDB returns the underlying sql.DB for migrations
func (db *DB) GetSQLDB() (*sql.DB, error) {
	return db.DB.DB()
}
