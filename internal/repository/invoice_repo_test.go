package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbit/spend-analytics/internal/models"
)

func TestVendorFindByName(t *testing.T) {
	store := newTestStore(t)

	created := seedVendor(t, store, "Phunk GmbH")

	found, err := store.Vendors.FindByName("Phunk GmbH")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Phunk GmbH", found.Name)

	missing, err := store.Vendors.FindByName("Nobody Ltd")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCustomerFindByName(t *testing.T) {
	store := newTestStore(t)

	customer := &models.Customer{
		Name:    "Flowbit AG",
		Email:   "billing@flowbitag.de",
		Phone:   "+49-89-12345678",
		Address: "Flowbit AG Address, Germany",
	}
	require.NoError(t, store.Customers.Create(nil, customer))
	assert.NotZero(t, customer.ID)

	found, err := store.Customers.FindByName("Flowbit AG")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, customer.ID, found.ID)

	missing, err := store.Customers.FindByName("Unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInvoiceExistsByNumber(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")

	exists, err := store.Invoices.ExistsByNumber("INV-1")
	require.NoError(t, err)
	assert.False(t, exists)

	seedInvoice(t, store, "INV-1", vendor.ID, 100, models.StatusSent, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	exists, err = store.Invoices.ExistsByNumber("INV-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInvoiceNumberUniqueConstraint(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")

	seedInvoice(t, store, "INV-1", vendor.ID, 100, models.StatusSent, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	duplicate := &models.Invoice{
		InvoiceNumber: "INV-1",
		VendorID:      vendor.ID,
		IssueDate:     time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC),
		TotalAmount:   50,
		Currency:      "EUR",
		Status:        models.StatusSent,
		Category:      "General",
	}
	assert.Error(t, store.Invoices.Create(nil, duplicate))
}

func TestInvoiceListRecentOrderAndJoin(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")

	customer := &models.Customer{Name: "Flowbit AG", Email: "billing@flowbitag.de"}
	require.NoError(t, store.Customers.Create(nil, customer))

	seedInvoice(t, store, "INV-OLD", vendor.ID, 100, models.StatusPaid, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	newer := &models.Invoice{
		InvoiceNumber: "INV-NEW",
		VendorID:      vendor.ID,
		CustomerID:    &customer.ID,
		IssueDate:     time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:   200,
		Currency:      "EUR",
		Status:        models.StatusSent,
		Category:      "Standard Invoice",
	}
	require.NoError(t, store.Invoices.Create(nil, newer))

	listings, err := store.Invoices.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "INV-NEW", listings[0].InvoiceNumber)
	assert.Equal(t, "Phunk GmbH", listings[0].Vendor)
	assert.Equal(t, "Flowbit AG", listings[0].Customer)
	assert.Equal(t, "INV-OLD", listings[1].InvoiceNumber)
	// No customer joined: empty, not NULL.
	assert.Equal(t, "", listings[1].Customer)

	limited, err := store.Invoices.ListRecent(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "INV-NEW", limited[0].InvoiceNumber)
}

func TestInvoiceCountAndTotalValue(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")

	total, err := store.Invoices.TotalValue()
	require.NoError(t, err)
	assert.Zero(t, total)

	seedInvoice(t, store, "INV-1", vendor.ID, 100.50, models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	seedInvoice(t, store, "INV-2", vendor.ID, 200.25, models.StatusSent, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC))

	count, err := store.Invoices.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	total, err = store.Invoices.TotalValue()
	require.NoError(t, err)
	assert.InDelta(t, 300.75, total, 0.001)
}

func TestPaymentCountByInvoice(t *testing.T) {
	store := newTestStore(t)
	vendor := seedVendor(t, store, "Phunk GmbH")
	invoice := seedInvoice(t, store, "INV-1", vendor.ID, 100, models.StatusPaid, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	count, err := store.Payments.CountByInvoice(invoice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Payments.Create(nil, &models.Payment{
		InvoiceID:   invoice.ID,
		Amount:      100,
		PaymentDate: invoice.IssueDate,
		Method:      models.MethodBankTransfer,
		Reference:   "INV-1",
		Status:      models.PaymentCompleted,
	}))

	count, err = store.Payments.CountByInvoice(invoice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
