// Package repository provides SQL-backed persistence for the analytics
// entities and the aggregate queries behind the Query Service.
package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/pkg/database"
)

// Store bundles all repositories over one database handle.
type Store struct {
	db     *database.DB
	logger *zap.Logger

	Vendors   *VendorRepository
	Customers *CustomerRepository
	Invoices  *InvoiceRepository
	LineItems *LineItemRepository
	Payments  *PaymentRepository
	Analytics *AnalyticsRepository
}

// NewStore creates a store with all repositories wired to db.
func NewStore(db *database.DB, logger *zap.Logger) *Store {
	return &Store{
		db:        db,
		logger:    logger,
		Vendors:   NewVendorRepository(db.DB, logger),
		Customers: NewCustomerRepository(db.DB, logger),
		Invoices:  NewInvoiceRepository(db.DB, logger),
		LineItems: NewLineItemRepository(db.DB, logger),
		Payments:  NewPaymentRepository(db.DB, logger),
		Analytics: NewAnalyticsRepository(db.DB, logger),
	}
}

// DB exposes the underlying handle for transactional callers.
func (s *Store) DB() *database.DB {
	return s.db
}

// WipeAll clears every table in dependency order. Used before a fresh
// ingestion run.
func (s *Store) WipeAll() error {
	s.logger.Info("Clearing all analytics tables")
	return s.db.WithTransaction(func(tx *sql.Tx) error {
		for _, table := range []string{"payments", "line_items", "invoices", "vendors", "customers"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}
