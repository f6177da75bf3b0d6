package ingest

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/models"
)

// Subtotal/tax synthesis shares applied when the source omits real figures.
// Carried over from the upstream pipeline; an assumed 16% tax rate with no
// documented justification, so treat as seed-data policy, not tax logic.
const (
	assumedNetShare = 0.84
	assumedTaxShare = 0.16
)

// dueDateGrace is applied when the source carries no due date.
const dueDateGrace = 30 * 24 * time.Hour

// VendorFields is the canonical vendor slice of a normalized record.
type VendorFields struct {
	Name    string
	Email   string
	Phone   string
	Address string
	TaxID   string
}

// CustomerFields is the canonical customer slice of a normalized record.
type CustomerFields struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// InvoiceFields is the canonical invoice slice of a normalized record.
type InvoiceFields struct {
	InvoiceNumber  string
	IssueDate      time.Time
	DueDate        time.Time
	TotalAmount    float64
	SubtotalAmount float64
	TaxAmount      float64
	Currency       string
	Status         models.InvoiceStatus
	Category       string
	Description    string
}

// LineItemFields is one canonical line item of a normalized record.
type LineItemFields struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	TotalPrice  float64
	Category    string
}

// PaymentFields is the canonical payment slice of a normalized record.
type PaymentFields struct {
	Amount      float64
	PaymentDate time.Time
	Method      models.PaymentMethod
	Reference   string
	Status      models.PaymentStatus
}

// NormalizedRecord is the canonical tuple produced from one source record.
// Customer and Payment are optional.
type NormalizedRecord struct {
	SourceID  string
	Vendor    VendorFields
	Customer  *CustomerFields
	Invoice   InvoiceFields
	LineItems []LineItemFields
	Payment   *PaymentFields
}

// Normalizer maps one heterogeneous source record into canonical entity
// field sets, applying defaulting and vocabulary rules.
type Normalizer struct {
	allowUnknownVendor bool
	now                func() time.Time
	logger             *zap.Logger
}

// NewNormalizer creates a normalizer. When allowUnknownVendor is set,
// records without a vendor name get a placeholder vendor instead of being
// skipped.
func NewNormalizer(allowUnknownVendor bool, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		allowUnknownVendor: allowUnknownVendor,
		now:                time.Now,
		logger:             logger,
	}
}

// unknownVendorName is the placeholder used when allowUnknownVendor is set.
const unknownVendorName = "Unknown Vendor"

// Normalize converts a source record into a NormalizedRecord. A non-empty
// skip reason means the record must not be materialized; skips are expected
// for incomplete source data and are never errors.
func (n *Normalizer) Normalize(rec *SourceRecord) (*NormalizedRecord, string) {
	raw := rec.ExtractedData.LLMData
	if len(raw) == 0 || string(raw) == "null" {
		return nil, "no extraction payload"
	}

	// Some records carry a bare string instead of structured data.
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		return nil, "extraction payload is unstructured text"
	}

	var payload llmPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, "malformed extraction payload"
	}

	invoice, _ := payload.Invoice.Get()
	summary, _ := payload.Summary.Get()

	invoiceNumber, hasNumber := invoice.InvoiceID.Get()
	invoiceTotal, hasTotal := summary.InvoiceTotal.Get()
	if !hasNumber || invoiceNumber == "" || !hasTotal {
		return nil, "missing invoice id or total"
	}

	vendor, _ := payload.Vendor.Get()
	vendorName := strings.TrimSpace(vendor.VendorName.Or(""))
	if vendorName == "" {
		if !n.allowUnknownVendor {
			return nil, "no vendor name"
		}
		vendorName = unknownVendorName
	}

	payment, _ := payload.Payment.Get()

	status := deriveStatus(rec)
	issueDate := n.resolveIssueDate(invoice, rec)
	dueDate := resolveDueDate(payment, issueDate)

	// Credit notes arrive with negative totals; amounts are stored unsigned.
	totalAmount := math.Abs(invoiceTotal)
	subtotalAmount := math.Abs(summary.SubTotal.Or(invoiceTotal * assumedNetShare))
	taxAmount := math.Abs(summary.TotalTax.Or(invoiceTotal * assumedTaxShare))

	lineItems, lineDescriptions := normalizeLineItems(payload)

	normalized := &NormalizedRecord{
		SourceID: rec.ID,
		Vendor: VendorFields{
			Name:    vendorName,
			Email:   SynthesizeEmail(vendorName, "contact"),
			Phone:   randomPhone("30"),
			Address: vendor.VendorAddress.Or(vendorName + " Address, Germany"),
			TaxID:   vendor.VendorTaxID.Or(randomTaxID("DE")),
		},
		Invoice: InvoiceFields{
			InvoiceNumber:  invoiceNumber,
			IssueDate:      issueDate,
			DueDate:        dueDate,
			TotalAmount:    totalAmount,
			SubtotalAmount: subtotalAmount,
			TaxAmount:      taxAmount,
			Currency:       currencyFromSymbol(summary.CurrencySymbol.Or("")),
			Status:         status,
			Category:       CategorizeDocument(rec.Name, lineDescriptions),
			Description:    "Invoice from " + rec.Name,
		},
		LineItems: lineItems,
	}

	if customer, ok := payload.Customer.Get(); ok {
		if name := strings.TrimSpace(customer.CustomerName.Or("")); name != "" {
			normalized.Customer = &CustomerFields{
				Name:    name,
				Email:   SynthesizeEmail(name, "billing"),
				Phone:   randomPhone("89"),
				Address: customer.CustomerAddress.Or(name + " Address, Germany"),
			}
		}
	}

	if status == models.StatusPaid {
		reference := invoiceNumber
		if account, ok := payment.BankAccountNumber.Get(); ok && account != "" {
			if len(account) > 20 {
				account = account[:20]
			}
			reference = account
		}
		normalized.Payment = &PaymentFields{
			Amount:      totalAmount,
			PaymentDate: issueDate,
			Method:      models.MethodBankTransfer,
			Reference:   reference,
			Status:      models.PaymentCompleted,
		}
	}

	return normalized, ""
}

// deriveStatus maps upstream processing flags to an invoice status. Human
// validation is treated as a proxy for settlement; there is no payment
// ledger to confirm against.
func deriveStatus(rec *SourceRecord) models.InvoiceStatus {
	if rec.IsValidatedByHuman {
		return models.StatusPaid
	}
	if rec.Status == "processed" {
		return models.StatusSent
	}
	return models.StatusPending
}

// resolveIssueDate picks the invoice date, then the record creation time,
// then now.
func (n *Normalizer) resolveIssueDate(invoice invoiceSection, rec *SourceRecord) time.Time {
	if raw, ok := invoice.InvoiceDate.Get(); ok {
		if parsed, ok := parseDate(raw); ok {
			return parsed
		}
	}
	if !rec.CreatedAt.IsZero() {
		return rec.CreatedAt.Time
	}
	return n.now()
}

func resolveDueDate(payment paymentSection, issueDate time.Time) time.Time {
	if raw, ok := payment.DueDate.Get(); ok {
		if parsed, ok := parseDate(raw); ok {
			return parsed
		}
	}
	return issueDate.Add(dueDateGrace)
}

// dateLayouts covers the formats seen in the export. An unparsable string is
// treated as absent, not as an error.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func currencyFromSymbol(symbol string) string {
	switch symbol {
	case "€":
		return "EUR"
	case "$":
		return "USD"
	case "£":
		return "GBP"
	}
	// Default for the predominantly German corpus.
	return "EUR"
}

// normalizeLineItems keeps only items with description, quantity and unit
// price all present. Total price defaults to quantity x unit price.
func normalizeLineItems(payload llmPayload) ([]LineItemFields, []string) {
	section, ok := payload.LineItems.Get()
	if !ok {
		return nil, nil
	}
	items, ok := section.Items.Get()
	if !ok {
		return nil, nil
	}

	var normalized []LineItemFields
	var descriptions []string
	for _, item := range items {
		description, hasDescription := item.Description.Get()
		quantity, hasQuantity := item.Quantity.Get()
		unitPrice, hasUnitPrice := item.UnitPrice.Get()
		if !hasDescription || description == "" || !hasQuantity || !hasUnitPrice {
			continue
		}

		totalPrice := item.TotalPrice.Or(quantity * unitPrice)
		normalized = append(normalized, LineItemFields{
			Description: description,
			Quantity:    math.Abs(quantity),
			UnitPrice:   math.Abs(unitPrice),
			TotalPrice:  math.Abs(totalPrice),
			Category:    CategorizeLineItem(description),
		})
		descriptions = append(descriptions, description)
	}
	return normalized, descriptions
}
