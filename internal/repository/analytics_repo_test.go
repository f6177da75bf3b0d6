package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbit/spend-analytics/internal/models"
)

func TestStatsEmptyStoreYieldsZeros(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Analytics.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSpend)
	assert.Zero(t, stats.TotalInvoices)
	assert.Zero(t, stats.AverageInvoiceValue)
}

func TestStatsAggregates(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")

	seedInvoice(t, store, "INV-1", vendor.ID, 100, models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	seedInvoice(t, store, "INV-2", vendor.ID, 300, models.StatusSent, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC))

	stats, err := store.Analytics.Stats()
	require.NoError(t, err)
	assert.InDelta(t, 400, stats.TotalSpend, 0.001)
	assert.EqualValues(t, 2, stats.TotalInvoices)
	assert.InDelta(t, 200, stats.AverageInvoiceValue, 0.001)
}

func TestMonthlyRevenueBuckets(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")

	seedInvoice(t, store, "INV-1", vendor.ID, 100, models.StatusPaid, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))
	seedInvoice(t, store, "INV-2", vendor.ID, 200, models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	seedInvoice(t, store, "INV-3", vendor.ID, 50, models.StatusSent, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC))
	// Outside the window.
	seedInvoice(t, store, "INV-0", vendor.ID, 999, models.StatusPaid, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	buckets, err := store.Analytics.MonthlyRevenue(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2025-07", buckets[0].Month)
	assert.EqualValues(t, 1, buckets[0].Count)
	assert.InDelta(t, 100, buckets[0].Value, 0.001)

	assert.Equal(t, "2025-08", buckets[1].Month)
	assert.EqualValues(t, 2, buckets[1].Count)
	assert.InDelta(t, 250, buckets[1].Value, 0.001)
}

func TestTopVendorsRankingAndPercentage(t *testing.T) {
	store := newTestStore(t)

	acme := seedVendor(t, store, "Acme Corp")
	tech := seedVendor(t, store, "Tech Solutions")
	// A vendor with no invoices never appears in the ranking.
	seedVendor(t, store, "Silent GmbH")

	seedInvoice(t, store, "INV-1", acme.ID, 600, models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	seedInvoice(t, store, "INV-2", acme.ID, 150, models.StatusSent, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC))
	seedInvoice(t, store, "INV-3", tech.ID, 250, models.StatusPaid, time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC))

	vendors, err := store.Analytics.TopVendors(10)
	require.NoError(t, err)
	require.Len(t, vendors, 2)

	assert.Equal(t, "Acme Corp", vendors[0].Name)
	assert.InDelta(t, 750, vendors[0].Spend, 0.001)
	assert.InDelta(t, 75.0, vendors[0].Percentage, 0.001)

	assert.Equal(t, "Tech Solutions", vendors[1].Name)
	assert.InDelta(t, 250, vendors[1].Spend, 0.001)
	assert.InDelta(t, 25.0, vendors[1].Percentage, 0.001)
}

func TestTopVendorsRespectsLimit(t *testing.T) {
	store := newTestStore(t)

	for i, name := range []string{"A", "B", "C"} {
		vendor := seedVendor(t, store, name)
		seedInvoice(t, store, name, vendor.ID, float64(100*(i+1)), models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	}

	vendors, err := store.Analytics.TopVendors(2)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "C", vendors[0].Name)
	assert.Equal(t, "B", vendors[1].Name)
}

func TestCategorySpendFromLineItems(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")
	invoice := seedInvoice(t, store, "INV-1", vendor.ID, 400, models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	for _, item := range []models.LineItem{
		{InvoiceID: invoice.ID, Description: "License A", Quantity: 1, UnitPrice: 300, TotalPrice: 300, Category: "Software"},
		{InvoiceID: invoice.ID, Description: "License B", Quantity: 1, UnitPrice: 50, TotalPrice: 50, Category: "Software"},
		{InvoiceID: invoice.ID, Description: "Support", Quantity: 1, UnitPrice: 50, TotalPrice: 50, Category: "Services"},
	} {
		item := item
		require.NoError(t, store.LineItems.Create(nil, &item))
	}

	categories, err := store.Analytics.CategorySpend(5)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	assert.Equal(t, "Software", categories[0].Category)
	assert.InDelta(t, 350, categories[0].Amount, 0.001)
	assert.Equal(t, "Services", categories[1].Category)
	assert.InDelta(t, 50, categories[1].Amount, 0.001)
}

func TestVendorBreakdownCountsPaidInvoices(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")

	seedInvoice(t, store, "INV-1", vendor.ID, 100, models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	seedInvoice(t, store, "INV-2", vendor.ID, 200, models.StatusSent, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC))
	seedInvoice(t, store, "INV-3", vendor.ID, 300, models.StatusPaid, time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC))

	vendors, err := store.Analytics.VendorBreakdown()
	require.NoError(t, err)
	require.Len(t, vendors, 1)

	assert.Equal(t, "Phunk GmbH", vendors[0].Name)
	assert.EqualValues(t, 3, vendors[0].InvoiceCount)
	assert.InDelta(t, 600, vendors[0].Total, 0.001)
	assert.EqualValues(t, 2, vendors[0].PaidCount)
}

func TestCategoryBreakdownFromInvoices(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")

	seedInvoice(t, store, "INV-1", vendor.ID, 100, models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	credit := &models.Invoice{
		InvoiceNumber: "GS-1",
		VendorID:      vendor.ID,
		IssueDate:     time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC),
		TotalAmount:   500,
		Currency:      "EUR",
		Status:        models.StatusPaid,
		Category:      "Credit Note",
	}
	require.NoError(t, store.Invoices.Create(nil, credit))

	categories, err := store.Analytics.CategoryBreakdown()
	require.NoError(t, err)
	require.Len(t, categories, 2)

	assert.Equal(t, "Credit Note", categories[0].Category)
	assert.InDelta(t, 500, categories[0].Total, 0.001)
	assert.EqualValues(t, 1, categories[0].Count)
	assert.Equal(t, "Standard Invoice", categories[1].Category)
}
