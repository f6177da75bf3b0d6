// Package models defines the relational entities produced by ingestion and
// served by the analytics API.
package models

import "time"

// InvoiceStatus is the lifecycle status of an invoice.
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "DRAFT"
	StatusPending   InvoiceStatus = "PENDING"
	StatusSent      InvoiceStatus = "SENT"
	StatusPaid      InvoiceStatus = "PAID"
	StatusOverdue   InvoiceStatus = "OVERDUE"
	StatusCancelled InvoiceStatus = "CANCELLED"
)

// PaymentMethod identifies how a payment was made.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
	MethodCash         PaymentMethod = "CASH"
)

// PaymentStatus is the settlement status of a payment.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentPending   PaymentStatus = "PENDING"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Vendor is the issuing party of an invoice. Deduplicated by name during
// ingestion; never updated after creation.
type Vendor struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxID     string
	CreatedAt time.Time
}

// Customer is the billed party of an invoice. Deduplicated by name during
// ingestion, optional on the invoice.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Invoice is one ingested source document. InvoiceNumber is globally unique;
// re-ingesting a record with a known number is a no-op.
type Invoice struct {
	ID             int64
	InvoiceNumber  string
	VendorID       int64
	CustomerID     *int64
	IssueDate      time.Time
	DueDate        time.Time
	TotalAmount    float64
	SubtotalAmount float64
	TaxAmount      float64
	Currency       string
	Status         InvoiceStatus
	Category       string
	Description    string
	CreatedAt      time.Time
}

// LineItem is one billed position of an invoice. Rows cascade with their
// parent invoice.
type LineItem struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    float64
	UnitPrice   float64
	TotalPrice  float64
	Category    string
	CreatedAt   time.Time
}

// Payment records a settlement against an invoice. The ingestion path creates
// at most one per invoice, and only for invoices derived as PAID.
type Payment struct {
	ID          int64
	InvoiceID   int64
	Amount      float64
	PaymentDate time.Time
	Method      PaymentMethod
	Reference   string
	Status      PaymentStatus
	CreatedAt   time.Time
}
