package http

import "github.com/flowbit/spend-analytics/internal/repository"

// Fixed demo payloads served when sample mode is enabled. The values match
// the dashboard's design fixtures so the charts render with recognizable
// data before any ingestion run.

var sampleStats = map[string]interface{}{
	"totalSpend":          12679.25,
	"totalInvoices":       64,
	"documentsUploaded":   17,
	"averageInvoiceValue": 2455.00,
}

var sampleTrends = []trendPoint{
	{Month: "Jan", Count: 25, Value: 5200},
	{Month: "Feb", Count: 30, Value: 6100},
	{Month: "Mar", Count: 35, Value: 7200},
	{Month: "Apr", Count: 28, Value: 5800},
	{Month: "May", Count: 40, Value: 8400},
	{Month: "Jun", Count: 32, Value: 6700},
	{Month: "Jul", Count: 38, Value: 7900},
	{Month: "Aug", Count: 45, Value: 9200},
	{Month: "Sep", Count: 42, Value: 8600},
	{Month: "Oct", Count: 47, Value: 8679.25},
	{Month: "Nov", Count: 35, Value: 7100},
	{Month: "Dec", Count: 30, Value: 6200},
}

var sampleTopVendors = []repository.VendorSpend{
	{Name: "Acme Corp", Spend: 8679.25, Percentage: 68.5},
	{Name: "Tech Solutions", Spend: 2450.00, Percentage: 19.3},
	{Name: "Global Supply", Spend: 1200.00, Percentage: 9.5},
	{Name: "Office Ltd", Spend: 350.00, Percentage: 2.8},
}

// defaultCategorySpend keeps the donut chart populated when the line item
// table is empty.
var defaultCategorySpend = []repository.CategoryAmount{
	{Category: "Operations", Amount: 1000},
	{Category: "Marketing", Amount: 7250},
	{Category: "Facilities", Amount: 1000},
}
