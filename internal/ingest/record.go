package ingest

import (
	"encoding/json"
	"time"
)

// SourceRecord is one entry of the vendor JSON export: a processed document
// with a confidence-scored extraction payload under extractedData.llmData.
type SourceRecord struct {
	ID                 string        `json:"_id"`
	Name               string        `json:"name"`
	FilePath           string        `json:"filePath"`
	FileType           string        `json:"fileType"`
	Status             string        `json:"status"`
	CreatedAt          MongoDate     `json:"createdAt"`
	UpdatedAt          MongoDate     `json:"updatedAt"`
	ExtractedData      ExtractedData `json:"extractedData"`
	IsValidatedByHuman bool          `json:"isValidatedByHuman"`
}

// ExtractedData keeps llmData raw: some records carry a bare string there
// instead of the structured payload, and those must be skipped, not fail.
type ExtractedData struct {
	LLMData json.RawMessage `json:"llmData"`
}

// MongoDate decodes the export's {"$date": "..."} timestamp wrapper.
type MongoDate struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *MongoDate) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		Date string `json:"$date"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, wrapper.Date)
	if err != nil {
		return nil
	}
	d.Time = parsed
	return nil
}

// llmPayload is the structured shape of extractedData.llmData. Every leaf is
// envelope-wrapped; sections themselves are wrapped too.
type llmPayload struct {
	Invoice   Field[invoiceSection]   `json:"invoice"`
	Vendor    Field[vendorSection]    `json:"vendor"`
	Customer  Field[customerSection]  `json:"customer"`
	Payment   Field[paymentSection]   `json:"payment"`
	Summary   Field[summarySection]   `json:"summary"`
	LineItems Field[lineItemsSection] `json:"lineItems"`
}

type invoiceSection struct {
	InvoiceID    Field[string] `json:"invoiceId"`
	InvoiceDate  Field[string] `json:"invoiceDate"`
	DeliveryDate Field[string] `json:"deliveryDate"`
}

type vendorSection struct {
	VendorName    Field[string] `json:"vendorName"`
	VendorAddress Field[string] `json:"vendorAddress"`
	VendorTaxID   Field[string] `json:"vendorTaxId"`
}

type customerSection struct {
	CustomerName    Field[string] `json:"customerName"`
	CustomerAddress Field[string] `json:"customerAddress"`
}

type paymentSection struct {
	DueDate           Field[string] `json:"dueDate"`
	PaymentTerms      Field[string] `json:"paymentTerms"`
	BankAccountNumber Field[string] `json:"bankAccountNumber"`
}

type summarySection struct {
	SubTotal       Field[float64] `json:"subTotal"`
	TotalTax       Field[float64] `json:"totalTax"`
	InvoiceTotal   Field[float64] `json:"invoiceTotal"`
	CurrencySymbol Field[string]  `json:"currencySymbol"`
}

type lineItemsSection struct {
	Items Field[[]sourceLineItem] `json:"items"`
}

type sourceLineItem struct {
	Description Field[string]  `json:"description"`
	Quantity    Field[float64] `json:"quantity"`
	UnitPrice   Field[float64] `json:"unitPrice"`
	TotalPrice  Field[float64] `json:"totalPrice"`
}
