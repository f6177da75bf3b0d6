package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// sourceExport is a small export mixing complete, skippable and duplicate
// records: two loadable invoices, one validated (paid), one unstructured
// payload, one missing its total, and one duplicate invoice number.
const sourceExport = `[
	{
		"_id": "rec-1",
		"name": "Rechnung_2025_101.pdf",
		"status": "processed",
		"createdAt": {"$date": "2025-08-19T10:30:00Z"},
		"isValidatedByHuman": true,
		"extractedData": {"llmData": {
			"invoice": {"value": {"invoiceId": {"value": "INV-101"}, "invoiceDate": {"value": "2025-08-01"}}},
			"vendor": {"value": {"vendorName": {"value": "Phunk GmbH"}}},
			"summary": {"value": {"invoiceTotal": {"value": 736.78}, "currencySymbol": {"value": "€"}}},
			"lineItems": {"value": {"items": {"value": [
				{"description": {"value": "Software license"}, "quantity": {"value": 2}, "unitPrice": {"value": 309.57}}
			]}}}
		}}
	},
	{
		"_id": "rec-2",
		"name": "Rechnung_2025_102.pdf",
		"status": "processed",
		"createdAt": {"$date": "2025-08-20T10:30:00Z"},
		"extractedData": {"llmData": {
			"invoice": {"value": {"invoiceId": {"value": "INV-102"}, "invoiceDate": {"value": "2025-08-02"}}},
			"vendor": {"value": {"vendorName": {"value": "Phunk GmbH"}}},
			"summary": {"value": {"invoiceTotal": {"value": 120}}}
		}}
	},
	{
		"_id": "rec-3",
		"name": "scan0001.pdf",
		"status": "uploaded",
		"extractedData": {"llmData": "unparsed OCR text"}
	},
	{
		"_id": "rec-4",
		"name": "scan0002.pdf",
		"status": "processed",
		"extractedData": {"llmData": {
			"invoice": {"value": {"invoiceId": {"value": "INV-104"}}},
			"vendor": {"value": {"vendorName": {"value": "Tech Solutions"}}}
		}}
	},
	{
		"_id": "rec-5",
		"name": "Rechnung_2025_101_copy.pdf",
		"status": "processed",
		"extractedData": {"llmData": {
			"invoice": {"value": {"invoiceId": {"value": "INV-101"}}},
			"vendor": {"value": {"vendorName": {"value": "Phunk GmbH"}}},
			"summary": {"value": {"invoiceTotal": {"value": 736.78}}}
		}}
	}
]`

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Analytics_Test_Data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDriverRun(t *testing.T) {
	store := newTestStore(t)
	driver := NewDriver(store, zap.NewNop())

	summary, err := driver.Run(Options{
		SourcePaths: []string{writeSourceFile(t, sourceExport)},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Records)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 3, summary.Skipped)
	assert.EqualValues(t, 1, summary.Vendors)
	assert.EqualValues(t, 2, summary.Invoices)
	assert.EqualValues(t, 1, summary.LineItems)
	// rec-1 is human validated, so it settles with a payment.
	assert.EqualValues(t, 1, summary.Payments)
	assert.InDelta(t, 856.78, summary.TotalValue, 0.001)
}

func TestDriverRunIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	driver := NewDriver(store, zap.NewNop())
	opts := Options{SourcePaths: []string{writeSourceFile(t, sourceExport)}}

	first, err := driver.Run(opts)
	require.NoError(t, err)

	second, err := driver.Run(opts)
	require.NoError(t, err)

	// Every loadable record is now a duplicate.
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 5, second.Skipped)
	assert.Equal(t, first.Invoices, second.Invoices)
	assert.Equal(t, first.Vendors, second.Vendors)
	assert.Equal(t, first.TotalValue, second.TotalValue)
}

func TestDriverWipeBeforeLoad(t *testing.T) {
	store := newTestStore(t)
	driver := NewDriver(store, zap.NewNop())
	path := writeSourceFile(t, sourceExport)

	_, err := driver.Run(Options{SourcePaths: []string{path}})
	require.NoError(t, err)

	summary, err := driver.Run(Options{SourcePaths: []string{path}, Wipe: true})
	require.NoError(t, err)

	// A wiped store accepts the full batch again.
	assert.Equal(t, 2, summary.Processed)
	assert.EqualValues(t, 2, summary.Invoices)
}

func TestDriverProbesCandidatePaths(t *testing.T) {
	store := newTestStore(t)
	driver := NewDriver(store, zap.NewNop())

	real := writeSourceFile(t, sourceExport)
	summary, err := driver.Run(Options{
		SourcePaths: []string{
			filepath.Join(t.TempDir(), "missing.json"),
			real,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, real, summary.SourcePath)
}

func TestDriverMissingSourceIsFatal(t *testing.T) {
	store := newTestStore(t)
	driver := NewDriver(store, zap.NewNop())

	_, err := driver.Run(Options{
		SourcePaths: []string{filepath.Join(t.TempDir(), "missing.json")},
	})
	assert.Error(t, err)
}

func TestDriverMalformedSourceIsFatal(t *testing.T) {
	store := newTestStore(t)
	driver := NewDriver(store, zap.NewNop())

	_, err := driver.Run(Options{
		SourcePaths: []string{writeSourceFile(t, `{"not": "an array"}`)},
	})
	assert.Error(t, err)
}

func TestDriverAllowUnknownVendor(t *testing.T) {
	export := `[{
		"_id": "rec-1",
		"name": "scan.pdf",
		"status": "processed",
		"extractedData": {"llmData": {
			"invoice": {"value": {"invoiceId": {"value": "INV-1"}}},
			"summary": {"value": {"invoiceTotal": {"value": 10}}}
		}}
	}]`

	store := newTestStore(t)
	driver := NewDriver(store, zap.NewNop())
	path := writeSourceFile(t, export)

	summary, err := driver.Run(Options{SourcePaths: []string{path}})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)

	summary, err = driver.Run(Options{SourcePaths: []string{path}, AllowUnknownVendor: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	vendor, err := store.Vendors.FindByName("Unknown Vendor")
	require.NoError(t, err)
	assert.NotNil(t, vendor)
}
