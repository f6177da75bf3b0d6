package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AnalyticsRepository computes the aggregate queries behind the Query
// Service read endpoints. All queries are stateless reads.
type AnalyticsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *sql.DB, logger *zap.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{
		db:     db,
		logger: logger,
	}
}

// Stats holds the overview card aggregates.
type Stats struct {
	TotalSpend          float64 `json:"totalSpend"`
	TotalInvoices       int64   `json:"totalInvoices"`
	AverageInvoiceValue float64 `json:"averageInvoiceValue"`
}

// Stats returns total spend, invoice count and average invoice value. An
// empty store yields zeros, not an error.
func (r *AnalyticsRepository) Stats() (*Stats, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0),
			COUNT(*),
			COALESCE(AVG(total_amount), 0)
		FROM invoices
	`

	var stats Stats
	err := r.db.QueryRow(query).Scan(&stats.TotalSpend, &stats.TotalInvoices, &stats.AverageInvoiceValue)
	if err != nil {
		r.logger.Error("Failed to compute stats", zap.Error(err))
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return &stats, nil
}

// MonthlyBucket is one calendar month of invoice activity.
type MonthlyBucket struct {
	Month string  `json:"month"`
	Count int64   `json:"count"`
	Value float64 `json:"value"`
}

// MonthlyRevenue groups invoice totals by calendar month (YYYY-MM) for
// invoices issued at or after since, in ascending month order.
func (r *AnalyticsRepository) MonthlyRevenue(since time.Time) ([]MonthlyBucket, error) {
	query := `
		SELECT strftime('%Y-%m', issue_date) AS month,
			COUNT(*),
			COALESCE(SUM(total_amount), 0)
		FROM invoices
		WHERE issue_date >= ?
		GROUP BY month
		ORDER BY month ASC
	`

	rows, err := r.db.Query(query, since)
	if err != nil {
		r.logger.Error("Failed to compute monthly revenue", zap.Error(err))
		return nil, fmt.Errorf("failed to compute monthly revenue: %w", err)
	}
	defer rows.Close()

	var buckets []MonthlyBucket
	for rows.Next() {
		var bucket MonthlyBucket
		if err := rows.Scan(&bucket.Month, &bucket.Count, &bucket.Value); err != nil {
			return nil, fmt.Errorf("failed to scan monthly bucket: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

// VendorSpend is one vendor's share of total spend.
type VendorSpend struct {
	Name       string  `json:"name"`
	Spend      float64 `json:"spend"`
	Percentage float64 `json:"percentage"`
}

// TopVendors ranks vendors by summed invoice totals and computes each
// vendor's percentage share of overall spend.
func (r *AnalyticsRepository) TopVendors(limit int) ([]VendorSpend, error) {
	query := `
		SELECT v.name, COALESCE(SUM(i.total_amount), 0) AS spend
		FROM vendors v
		JOIN invoices i ON i.vendor_id = v.id
		GROUP BY v.id, v.name
		ORDER BY spend DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		r.logger.Error("Failed to compute top vendors", zap.Error(err))
		return nil, fmt.Errorf("failed to compute top vendors: %w", err)
	}
	defer rows.Close()

	var vendors []VendorSpend
	for rows.Next() {
		var vendor VendorSpend
		if err := rows.Scan(&vendor.Name, &vendor.Spend); err != nil {
			return nil, fmt.Errorf("failed to scan vendor spend: %w", err)
		}
		vendors = append(vendors, vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var grandTotal float64
	if err := r.db.QueryRow("SELECT COALESCE(SUM(total_amount), 0) FROM invoices").Scan(&grandTotal); err != nil {
		return nil, fmt.Errorf("failed to compute total spend: %w", err)
	}
	if grandTotal > 0 {
		for i := range vendors {
			vendors[i].Percentage = roundTenth(vendors[i].Spend / grandTotal * 100)
		}
	}

	return vendors, nil
}

// CategoryAmount is one category's summed line item value.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// CategorySpend returns the top categories by summed line item value.
func (r *AnalyticsRepository) CategorySpend(limit int) ([]CategoryAmount, error) {
	query := `
		SELECT category, COALESCE(SUM(total_price), 0) AS amount
		FROM line_items
		GROUP BY category
		ORDER BY amount DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		r.logger.Error("Failed to compute category spend", zap.Error(err))
		return nil, fmt.Errorf("failed to compute category spend: %w", err)
	}
	defer rows.Close()

	var categories []CategoryAmount
	for rows.Next() {
		var category CategoryAmount
		if err := rows.Scan(&category.Category, &category.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan category spend: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// VendorAnalytics is a per-vendor activity rollup.
type VendorAnalytics struct {
	Name         string  `json:"name"`
	InvoiceCount int64   `json:"invoiceCount"`
	Total        float64 `json:"total"`
	PaidCount    int64   `json:"paidCount"`
}

// VendorBreakdown returns per-vendor invoice count, spend total and paid
// invoice count, ordered by total descending.
func (r *AnalyticsRepository) VendorBreakdown() ([]VendorAnalytics, error) {
	query := `
		SELECT v.name,
			COUNT(i.id),
			COALESCE(SUM(i.total_amount), 0) AS total,
			COALESCE(SUM(CASE WHEN i.status = 'PAID' THEN 1 ELSE 0 END), 0)
		FROM vendors v
		LEFT JOIN invoices i ON i.vendor_id = v.id
		GROUP BY v.id, v.name
		ORDER BY total DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to compute vendor breakdown", zap.Error(err))
		return nil, fmt.Errorf("failed to compute vendor breakdown: %w", err)
	}
	defer rows.Close()

	var vendors []VendorAnalytics
	for rows.Next() {
		var vendor VendorAnalytics
		if err := rows.Scan(&vendor.Name, &vendor.InvoiceCount, &vendor.Total, &vendor.PaidCount); err != nil {
			return nil, fmt.Errorf("failed to scan vendor breakdown: %w", err)
		}
		vendors = append(vendors, vendor)
	}
	return vendors, rows.Err()
}

// CategoryAnalytics is a per-category invoice rollup.
type CategoryAnalytics struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// CategoryBreakdown returns per-category invoice sum and count, ordered by
// total descending.
func (r *AnalyticsRepository) CategoryBreakdown() ([]CategoryAnalytics, error) {
	query := `
		SELECT category,
			COALESCE(SUM(total_amount), 0) AS total,
			COUNT(*)
		FROM invoices
		GROUP BY category
		ORDER BY total DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to compute category breakdown", zap.Error(err))
		return nil, fmt.Errorf("failed to compute category breakdown: %w", err)
	}
	defer rows.Close()

	var categories []CategoryAnalytics
	for rows.Next() {
		var category CategoryAnalytics
		if err := rows.Scan(&category.Category, &category.Total, &category.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category breakdown: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
