// Package database opens and manages the SQLite file behind the analytics
// store and applies its schema migrations.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Config holds the connection settings for the analytics store.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB is the handle to the analytics store. It embeds sql.DB, so repositories
// query it directly; WithTransaction is the write path for multi-row work
// such as loading one ingested record.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// New opens the store at cfg.Path and verifies it is reachable.
func New(cfg Config, logger *zap.Logger) (*DB, error) {
	// WAL keeps dashboard reads from blocking behind an ingestion run, and
	// foreign keys must be switched on per connection for the invoice
	// cascade to hold.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", cfg.Path)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		DB:     sqlDB,
		logger: logger,
	}

	logger.Info("Analytics store opened", zap.String("path", cfg.Path))
	return db, nil
}

// WithTransaction runs fn inside a transaction, committing on nil and
// rolling back on error or panic. One ingested record's invoice, line item
// and payment rows go through a single call so a partial record never lands.
func (db *DB) WithTransaction(fn func(*sql.Tx) error) error {
	tx, err := db.DB.Begin()
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		db.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Close closes the store.
func (db *DB) Close() error {
	db.logger.Info("Closing analytics store")
	return db.DB.Close()
}
