package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/models"
)

// InvoiceRepository handles invoice database operations
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new invoice record
func (r *InvoiceRepository) Create(tx *sql.Tx, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (
			invoice_number, vendor_id, customer_id, issue_date, due_date,
			total_amount, subtotal_amount, tax_amount, currency, status,
			category, description
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var customerID interface{}
	if invoice.CustomerID != nil {
		customerID = *invoice.CustomerID
	}

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.Exec(query,
			invoice.InvoiceNumber,
			invoice.VendorID,
			customerID,
			invoice.IssueDate,
			invoice.DueDate,
			invoice.TotalAmount,
			invoice.SubtotalAmount,
			invoice.TaxAmount,
			invoice.Currency,
			string(invoice.Status),
			invoice.Category,
			invoice.Description,
		)
	} else {
		result, err = r.db.Exec(query,
			invoice.InvoiceNumber,
			invoice.VendorID,
			customerID,
			invoice.IssueDate,
			invoice.DueDate,
			invoice.TotalAmount,
			invoice.SubtotalAmount,
			invoice.TaxAmount,
			invoice.Currency,
			string(invoice.Status),
			invoice.Category,
			invoice.Description,
		)
	}

	if err != nil {
		r.logger.Error("Failed to create invoice",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	invoice.ID = id
	return nil
}

// ExistsByNumber reports whether an invoice with the given number exists
func (r *InvoiceRepository) ExistsByNumber(invoiceNumber string) (bool, error) {
	var id int64
	err := r.db.QueryRow("SELECT id FROM invoices WHERE invoice_number = ? LIMIT 1", invoiceNumber).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to check invoice number",
			zap.String("invoice_number", invoiceNumber),
			zap.Error(err))
		return false, fmt.Errorf("failed to check invoice number: %w", err)
	}
	return true, nil
}

// InvoiceListing is an invoice row with vendor/customer names joined in.
type InvoiceListing struct {
	ID            int64
	InvoiceNumber string
	Vendor        string
	Customer      string
	IssueDate     time.Time
	DueDate       time.Time
	TotalAmount   float64
	Currency      string
	Status        string
	Category      string
}

// ListRecent returns the most recently issued invoices, bounded by limit.
func (r *InvoiceRepository) ListRecent(limit int) ([]InvoiceListing, error) {
	query := `
		SELECT i.id, i.invoice_number, v.name, COALESCE(c.name, ''),
			i.issue_date, i.due_date, i.total_amount, i.currency, i.status, i.category
		FROM invoices i
		JOIN vendors v ON v.id = i.vendor_id
		LEFT JOIN customers c ON c.id = i.customer_id
		ORDER BY i.issue_date DESC, i.id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var listings []InvoiceListing
	for rows.Next() {
		var listing InvoiceListing
		err := rows.Scan(
			&listing.ID,
			&listing.InvoiceNumber,
			&listing.Vendor,
			&listing.Customer,
			&listing.IssueDate,
			&listing.DueDate,
			&listing.TotalAmount,
			&listing.Currency,
			&listing.Status,
			&listing.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

// Count returns the number of invoice rows
func (r *InvoiceRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM invoices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

// TotalValue returns the sum of all invoice totals
func (r *InvoiceRepository) TotalValue() (float64, error) {
	var total float64
	if err := r.db.QueryRow("SELECT COALESCE(SUM(total_amount), 0) FROM invoices").Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum invoice totals: %w", err)
	}
	return total, nil
}
