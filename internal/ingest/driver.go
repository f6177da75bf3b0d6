package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/repository"
)

// Options controls one ingestion run.
type Options struct {
	// SourcePaths is probed in order; the first existing file is used.
	SourcePaths []string
	// Wipe clears all tables before loading.
	Wipe bool
	// AllowUnknownVendor substitutes a placeholder vendor for records
	// without a vendor name instead of skipping them.
	AllowUnknownVendor bool
	// ProgressInterval is how many processed records between progress
	// logs. Zero disables progress logging.
	ProgressInterval int
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	SourcePath string  `json:"sourcePath"`
	Records    int     `json:"records"`
	Processed  int     `json:"processed"`
	Skipped    int     `json:"skipped"`
	Vendors    int64   `json:"vendors"`
	Customers  int64   `json:"customers"`
	Invoices   int64   `json:"invoices"`
	LineItems  int64   `json:"lineItems"`
	Payments   int64   `json:"payments"`
	TotalValue float64 `json:"totalValue"`
}

// Driver orchestrates one end-to-end ingestion run: locate the source file,
// parse it, optionally wipe the store, push every record through the
// normalizer and loader, and report totals.
type Driver struct {
	store  *repository.Store
	logger *zap.Logger
}

// NewDriver creates an ingestion driver.
func NewDriver(store *repository.Store, logger *zap.Logger) *Driver {
	return &Driver{
		store:  store,
		logger: logger,
	}
}

// Run executes one ingestion run. A missing source file is fatal; any
// per-record failure is logged, counted as skipped, and the run continues.
func (d *Driver) Run(opts Options) (*Summary, error) {
	sourcePath, err := locateSource(opts.SourcePaths)
	if err != nil {
		return nil, err
	}

	d.logger.Info("Starting ingestion run", zap.String("source", sourcePath))

	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	var records []SourceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse source file: %w", err)
	}

	d.logger.Info("Parsed source records", zap.Int("count", len(records)))

	if opts.Wipe {
		if err := d.store.WipeAll(); err != nil {
			return nil, err
		}
	}

	normalizer := NewNormalizer(opts.AllowUnknownVendor, d.logger)
	loader := NewLoader(d.store, d.logger)

	summary := &Summary{SourcePath: sourcePath, Records: len(records)}
	for i := range records {
		record := &records[i]

		normalized, skipReason := normalizer.Normalize(record)
		if normalized == nil {
			summary.Skipped++
			d.logger.Debug("Skipping record",
				zap.String("record_id", record.ID),
				zap.String("reason", skipReason))
			continue
		}

		created, err := loader.Load(normalized)
		if err != nil {
			// Best-effort batch: one bad record never aborts the run.
			summary.Skipped++
			d.logger.Error("Failed to load record",
				zap.String("record_id", record.ID),
				zap.String("invoice_number", normalized.Invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}
		if !created {
			summary.Skipped++
			continue
		}

		summary.Processed++
		if opts.ProgressInterval > 0 && summary.Processed%opts.ProgressInterval == 0 {
			d.logger.Info("Ingestion progress", zap.Int("processed", summary.Processed))
		}
	}

	if err := d.fillCounts(summary); err != nil {
		return nil, err
	}

	d.logger.Info("Ingestion run completed",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int64("vendors", summary.Vendors),
		zap.Int64("customers", summary.Customers),
		zap.Int64("invoices", summary.Invoices),
		zap.Int64("line_items", summary.LineItems),
		zap.Int64("payments", summary.Payments),
		zap.Float64("total_value", summary.TotalValue))

	return summary, nil
}

func (d *Driver) fillCounts(summary *Summary) error {
	var err error
	if summary.Vendors, err = d.store.Vendors.Count(); err != nil {
		return err
	}
	if summary.Customers, err = d.store.Customers.Count(); err != nil {
		return err
	}
	if summary.Invoices, err = d.store.Invoices.Count(); err != nil {
		return err
	}
	if summary.LineItems, err = d.store.LineItems.Count(); err != nil {
		return err
	}
	if summary.Payments, err = d.store.Payments.Count(); err != nil {
		return err
	}
	if summary.TotalValue, err = d.store.Invoices.TotalValue(); err != nil {
		return err
	}
	return nil
}

// locateSource probes the candidate paths in order and returns the first
// existing regular file.
func locateSource(paths []string) (string, error) {
	for _, candidate := range paths {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("source data file not found in any of %d candidate paths", len(paths))
}
