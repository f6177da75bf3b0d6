package ingest

import (
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/models"
	"github.com/flowbit/spend-analytics/internal/repository"
)

// Loader persists normalized records. Vendors and customers are
// deduplicated by trimmed name, invoices by invoice number; invoice, line
// item and payment rows for one record are written in a single transaction.
//
// The name caches are per-loader and unsynchronized: ingestion is
// single-writer by design, and a loader must not be shared across
// concurrent runs.
type Loader struct {
	store  *repository.Store
	logger *zap.Logger

	vendorCache   map[string]int64
	customerCache map[string]int64
}

// NewLoader creates a loader for one ingestion run.
func NewLoader(store *repository.Store, logger *zap.Logger) *Loader {
	return &Loader{
		store:         store,
		logger:        logger,
		vendorCache:   make(map[string]int64),
		customerCache: make(map[string]int64),
	}
}

// Load persists one normalized record. It returns false when the record was
// skipped because its invoice number already exists; duplicate skips are
// idempotent re-ingestion working as intended, not failures.
func (l *Loader) Load(rec *NormalizedRecord) (bool, error) {
	vendorID, err := l.vendorID(&rec.Vendor)
	if err != nil {
		return false, err
	}

	var customerID *int64
	if rec.Customer != nil {
		id, err := l.customerID(rec.Customer)
		if err != nil {
			return false, err
		}
		customerID = &id
	}

	exists, err := l.store.Invoices.ExistsByNumber(rec.Invoice.InvoiceNumber)
	if err != nil {
		return false, err
	}
	if exists {
		l.logger.Debug("Skipping duplicate invoice",
			zap.String("invoice_number", rec.Invoice.InvoiceNumber))
		return false, nil
	}

	err = l.store.DB().WithTransaction(func(tx *sql.Tx) error {
		invoice := &models.Invoice{
			InvoiceNumber:  rec.Invoice.InvoiceNumber,
			VendorID:       vendorID,
			CustomerID:     customerID,
			IssueDate:      rec.Invoice.IssueDate,
			DueDate:        rec.Invoice.DueDate,
			TotalAmount:    rec.Invoice.TotalAmount,
			SubtotalAmount: rec.Invoice.SubtotalAmount,
			TaxAmount:      rec.Invoice.TaxAmount,
			Currency:       rec.Invoice.Currency,
			Status:         rec.Invoice.Status,
			Category:       rec.Invoice.Category,
			Description:    rec.Invoice.Description,
		}
		if err := l.store.Invoices.Create(tx, invoice); err != nil {
			return err
		}

		for _, item := range rec.LineItems {
			lineItem := &models.LineItem{
				InvoiceID:   invoice.ID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				TotalPrice:  item.TotalPrice,
				Category:    item.Category,
			}
			if err := l.store.LineItems.Create(tx, lineItem); err != nil {
				return err
			}
		}

		if rec.Payment != nil {
			payment := &models.Payment{
				InvoiceID:   invoice.ID,
				Amount:      rec.Payment.Amount,
				PaymentDate: rec.Payment.PaymentDate,
				Method:      rec.Payment.Method,
				Reference:   rec.Payment.Reference,
				Status:      rec.Payment.Status,
			}
			if err := l.store.Payments.Create(tx, payment); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// vendorID resolves a vendor to its row id, creating the row on first
// encounter of the name within this run or in the store.
func (l *Loader) vendorID(fields *VendorFields) (int64, error) {
	key := strings.TrimSpace(fields.Name)
	if id, ok := l.vendorCache[key]; ok {
		return id, nil
	}

	existing, err := l.store.Vendors.FindByName(key)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		l.vendorCache[key] = existing.ID
		return existing.ID, nil
	}

	vendor := &models.Vendor{
		Name:    key,
		Email:   fields.Email,
		Phone:   fields.Phone,
		Address: fields.Address,
		TaxID:   fields.TaxID,
	}
	if err := l.store.Vendors.Create(nil, vendor); err != nil {
		return 0, err
	}
	l.vendorCache[key] = vendor.ID
	return vendor.ID, nil
}

func (l *Loader) customerID(fields *CustomerFields) (int64, error) {
	key := strings.TrimSpace(fields.Name)
	if id, ok := l.customerCache[key]; ok {
		return id, nil
	}

	existing, err := l.store.Customers.FindByName(key)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		l.customerCache[key] = existing.ID
		return existing.ID, nil
	}

	customer := &models.Customer{
		Name:    key,
		Email:   fields.Email,
		Phone:   fields.Phone,
		Address: fields.Address,
	}
	if err := l.store.Customers.Create(nil, customer); err != nil {
		return 0, err
	}
	l.customerCache[key] = customer.ID
	return customer.ID, nil
}
