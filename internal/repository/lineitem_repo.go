package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/models"
)

// LineItemRepository handles line item database operations
type LineItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db *sql.DB, logger *zap.Logger) *LineItemRepository {
	return &LineItemRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new line item record
func (r *LineItemRepository) Create(tx *sql.Tx, item *models.LineItem) error {
	query := `
		INSERT INTO line_items (invoice_id, description, quantity, unit_price, total_price, category)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.Exec(query, item.InvoiceID, item.Description, item.Quantity, item.UnitPrice, item.TotalPrice, item.Category)
	} else {
		result, err = r.db.Exec(query, item.InvoiceID, item.Description, item.Quantity, item.UnitPrice, item.TotalPrice, item.Category)
	}

	if err != nil {
		r.logger.Error("Failed to create line item", zap.Int64("invoice_id", item.InvoiceID), zap.Error(err))
		return fmt.Errorf("failed to create line item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	return nil
}

// Count returns the number of line item rows
func (r *LineItemRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM line_items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count line items: %w", err)
	}
	return count, nil
}
