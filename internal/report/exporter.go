// Package report renders stored analytics data into downloadable documents.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/repository"
)

const invoiceSheet = "Invoices"

var invoiceHeader = []string{
	"Invoice Number", "Vendor", "Customer", "Issue Date", "Due Date",
	"Total Amount", "Currency", "Status", "Category",
}

// Exporter builds spreadsheet exports of the invoice table.
type Exporter struct {
	invoices *repository.InvoiceRepository
	logger   *zap.Logger
}

// NewExporter creates an exporter.
func NewExporter(invoices *repository.InvoiceRepository, logger *zap.Logger) *Exporter {
	return &Exporter{
		invoices: invoices,
		logger:   logger,
	}
}

// InvoiceWorkbook renders the most recent invoices (bounded by limit) as an
// .xlsx workbook and returns the serialized file.
func (e *Exporter) InvoiceWorkbook(limit int) ([]byte, error) {
	listings, err := e.invoices.ListRecent(limit)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(invoiceSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for col, title := range invoiceHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell name: %w", err)
		}
		e.setCell(f, cell, title)
	}

	for row, listing := range listings {
		values := []interface{}{
			listing.InvoiceNumber,
			listing.Vendor,
			listing.Customer,
			listing.IssueDate.Format("2006-01-02"),
			listing.DueDate.Format("2006-01-02"),
			listing.TotalAmount,
			listing.Currency,
			listing.Status,
			listing.Category,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell name: %w", err)
			}
			e.setCell(f, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	e.logger.Info("Invoice workbook exported", zap.Int("rows", len(listings)))
	return buf.Bytes(), nil
}

// setCell sets a cell value, logging instead of failing on cell errors.
func (e *Exporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(invoiceSheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
