package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/models"
)

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new payment record
func (r *PaymentRepository) Create(tx *sql.Tx, payment *models.Payment) error {
	query := `
		INSERT INTO payments (invoice_id, amount, payment_date, method, reference, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.Exec(query, payment.InvoiceID, payment.Amount, payment.PaymentDate, string(payment.Method), payment.Reference, string(payment.Status))
	} else {
		result, err = r.db.Exec(query, payment.InvoiceID, payment.Amount, payment.PaymentDate, string(payment.Method), payment.Reference, string(payment.Status))
	}

	if err != nil {
		r.logger.Error("Failed to create payment", zap.Int64("invoice_id", payment.InvoiceID), zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	payment.ID = id
	return nil
}

// CountByInvoice returns the number of payments referencing an invoice
func (r *PaymentRepository) CountByInvoice(invoiceID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM payments WHERE invoice_id = ?", invoiceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

// Count returns the number of payment rows
func (r *PaymentRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM payments").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}
