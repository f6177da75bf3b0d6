package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/models"
)

// CustomerRepository handles customer database operations
type CustomerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB, logger *zap.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new customer record
func (r *CustomerRepository) Create(tx *sql.Tx, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, address)
		VALUES (?, ?, ?, ?)
	`

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.Exec(query, customer.Name, customer.Email, customer.Phone, customer.Address)
	} else {
		result, err = r.db.Exec(query, customer.Name, customer.Email, customer.Phone, customer.Address)
	}

	if err != nil {
		r.logger.Error("Failed to create customer", zap.String("name", customer.Name), zap.Error(err))
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	customer.ID = id
	return nil
}

// FindByName retrieves a customer by exact name match, or nil when none exists
func (r *CustomerRepository) FindByName(name string) (*models.Customer, error) {
	query := `
		SELECT id, name, email, phone, address, created_at
		FROM customers
		WHERE name = ?
		LIMIT 1
	`

	var customer models.Customer
	err := r.db.QueryRow(query, name).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.Address,
		&customer.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find customer by name", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return &customer, nil
}

// Count returns the number of customer rows
func (r *CustomerRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}
