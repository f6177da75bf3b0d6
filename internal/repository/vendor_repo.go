package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/models"
)

// VendorRepository handles vendor database operations
type VendorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sql.DB, logger *zap.Logger) *VendorRepository {
	return &VendorRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new vendor record
func (r *VendorRepository) Create(tx *sql.Tx, vendor *models.Vendor) error {
	query := `
		INSERT INTO vendors (name, email, phone, address, tax_id)
		VALUES (?, ?, ?, ?, ?)
	`

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.Exec(query, vendor.Name, vendor.Email, vendor.Phone, vendor.Address, vendor.TaxID)
	} else {
		result, err = r.db.Exec(query, vendor.Name, vendor.Email, vendor.Phone, vendor.Address, vendor.TaxID)
	}

	if err != nil {
		r.logger.Error("Failed to create vendor", zap.String("name", vendor.Name), zap.Error(err))
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	vendor.ID = id
	return nil
}

// FindByName retrieves a vendor by exact name match, or nil when none exists
func (r *VendorRepository) FindByName(name string) (*models.Vendor, error) {
	query := `
		SELECT id, name, email, phone, address, tax_id, created_at
		FROM vendors
		WHERE name = ?
		LIMIT 1
	`

	var vendor models.Vendor
	err := r.db.QueryRow(query, name).Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.Email,
		&vendor.Phone,
		&vendor.Address,
		&vendor.TaxID,
		&vendor.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find vendor by name", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to find vendor: %w", err)
	}

	return &vendor, nil
}

// Count returns the number of vendor rows
func (r *VendorRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM vendors").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count vendors: %w", err)
	}
	return count, nil
}
