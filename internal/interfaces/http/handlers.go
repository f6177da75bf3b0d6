package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/chat"
	"github.com/flowbit/spend-analytics/internal/ingest"
	"github.com/flowbit/spend-analytics/internal/report"
	"github.com/flowbit/spend-analytics/internal/repository"
)

// HandlersConfig tunes handler behavior.
type HandlersConfig struct {
	// SampleMode serves fixed demo payloads on the dashboard chart
	// endpoints instead of live aggregates.
	SampleMode bool
	// InvoicePageSize bounds the invoice listing and export size.
	InvoicePageSize int
	// Ingest configures the seed endpoint's ingestion runs.
	Ingest ingest.Options
}

// Handlers implements the Query Service HTTP endpoints.
type Handlers struct {
	config   HandlersConfig
	store    *repository.Store
	chat     *chat.Service
	exporter *report.Exporter
	driver   *ingest.Driver
	logger   *zap.Logger
}

// NewHandlers creates the endpoint handlers.
func NewHandlers(
	config HandlersConfig,
	store *repository.Store,
	chatService *chat.Service,
	exporter *report.Exporter,
	driver *ingest.Driver,
	logger *zap.Logger,
) *Handlers {
	if config.InvoicePageSize <= 0 {
		config.InvoicePageSize = 50
	}
	return &Handlers{
		config:   config,
		store:    store,
		chat:     chatService,
		exporter: exporter,
		driver:   driver,
		logger:   logger,
	}
}

// Health reports liveness and storage reachability.
func (h *Handlers) Health(c *gin.Context) {
	timestamp := time.Now().UTC().Format(time.RFC3339)

	var probe int
	if err := h.store.DB().QueryRow("SELECT 1").Scan(&probe); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": timestamp,
			"database":  "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": timestamp,
		"database":  "connected",
	})
}

// Stats returns the overview card aggregates.
func (h *Handlers) Stats(c *gin.Context) {
	if h.config.SampleMode {
		c.JSON(http.StatusOK, sampleStats)
		return
	}

	stats, err := h.store.Analytics.Stats()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// InvoiceTrends returns twelve months of invoice volume and value for the
// trends chart. Months without invoices are zero-filled so the chart always
// has a full year of buckets.
func (h *Handlers) InvoiceTrends(c *gin.Context) {
	if h.config.SampleMode {
		c.JSON(http.StatusOK, sampleTrends)
		return
	}

	now := time.Now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	buckets, err := h.store.Analytics.MonthlyRevenue(since)
	if err != nil {
		h.fail(c, err)
		return
	}

	byMonth := make(map[string]repository.MonthlyBucket, len(buckets))
	for _, bucket := range buckets {
		byMonth[bucket.Month] = bucket
	}

	trends := make([]trendPoint, 0, 12)
	for i := 0; i < 12; i++ {
		month := since.AddDate(0, i, 0)
		bucket := byMonth[month.Format("2006-01")]
		trends = append(trends, trendPoint{
			Month: month.Format("Jan"),
			Count: bucket.Count,
			Value: bucket.Value,
		})
	}

	c.JSON(http.StatusOK, trends)
}

// trendPoint is one month on the invoice trends chart.
type trendPoint struct {
	Month string  `json:"month"`
	Count int64   `json:"count"`
	Value float64 `json:"value"`
}

// TopVendors returns the ten vendors with the highest summed spend.
func (h *Handlers) TopVendors(c *gin.Context) {
	if h.config.SampleMode {
		c.JSON(http.StatusOK, sampleTopVendors)
		return
	}

	vendors, err := h.store.Analytics.TopVendors(10)
	if err != nil {
		h.fail(c, err)
		return
	}
	if vendors == nil {
		vendors = []repository.VendorSpend{}
	}
	c.JSON(http.StatusOK, vendors)
}

// CategorySpend returns the top spend categories from line items. An empty
// store falls back to placeholder categories so the dashboard donut chart
// renders.
func (h *Handlers) CategorySpend(c *gin.Context) {
	categories, err := h.store.Analytics.CategorySpend(6)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(categories) == 0 {
		c.JSON(http.StatusOK, defaultCategorySpend)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CashOutflow is a placeholder for the forecast chart. Forecasting is not
// implemented; the endpoint exists so the dashboard does not error.
func (h *Handlers) CashOutflow(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{})
}

// ListInvoices returns the most recent invoices for the table view.
func (h *Handlers) ListInvoices(c *gin.Context) {
	listings, err := h.store.Invoices.ListRecent(h.config.InvoicePageSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	rows := make([]invoiceRow, 0, len(listings))
	for _, listing := range listings {
		rows = append(rows, invoiceRow{
			ID:            listing.ID,
			InvoiceNumber: listing.InvoiceNumber,
			Vendor:        listing.Vendor,
			Customer:      listing.Customer,
			Date:          listing.IssueDate.Format("02.01.2006"),
			DueDate:       listing.DueDate.Format("02.01.2006"),
			Amount:        listing.TotalAmount,
			Currency:      listing.Currency,
			Status:        listing.Status,
			Category:      listing.Category,
		})
	}

	c.JSON(http.StatusOK, rows)
}

// invoiceRow is the invoice table row shape the dashboard expects.
type invoiceRow struct {
	ID            int64   `json:"id"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Vendor        string  `json:"vendor"`
	Customer      string  `json:"customer,omitempty"`
	Date          string  `json:"date"`
	DueDate       string  `json:"dueDate"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	Category      string  `json:"category"`
}

// RevenueByMonth returns the raw last-twelve-months revenue buckets.
func (h *Handlers) RevenueByMonth(c *gin.Context) {
	now := time.Now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	buckets, err := h.store.Analytics.MonthlyRevenue(since)
	if err != nil {
		h.fail(c, err)
		return
	}
	if buckets == nil {
		buckets = []repository.MonthlyBucket{}
	}
	c.JSON(http.StatusOK, buckets)
}

// VendorBreakdown returns per-vendor activity rollups.
func (h *Handlers) VendorBreakdown(c *gin.Context) {
	vendors, err := h.store.Analytics.VendorBreakdown()
	if err != nil {
		h.fail(c, err)
		return
	}
	if vendors == nil {
		vendors = []repository.VendorAnalytics{}
	}
	c.JSON(http.StatusOK, vendors)
}

// CategoryBreakdown returns per-category invoice rollups.
func (h *Handlers) CategoryBreakdown(c *gin.Context) {
	categories, err := h.store.Analytics.CategoryBreakdown()
	if err != nil {
		h.fail(c, err)
		return
	}
	if categories == nil {
		categories = []repository.CategoryAnalytics{}
	}
	c.JSON(http.StatusOK, categories)
}

// RunSeed executes one ingestion run against the configured source file and
// returns the run summary.
func (h *Handlers) RunSeed(c *gin.Context) {
	summary, err := h.driver.Run(h.config.Ingest)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SeedStatus reports whether the store has been seeded.
func (h *Handlers) SeedStatus(c *gin.Context) {
	count, err := h.store.Invoices.Count()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"seeded":   count > 0,
		"invoices": count,
	})
}

// chatRequest is the chat-with-data request body.
type chatRequest struct {
	Query string `json:"query"`
}

// ChatWithData answers a free-text question about the stored data. The
// response is always 200 with an Answer; service failures degrade inside
// the answer rather than surfacing as HTTP errors.
func (h *Handlers) ChatWithData(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	answer := h.chat.Query(c.Request.Context(), req.Query)
	c.JSON(http.StatusOK, answer)
}

// ExportInvoices streams the invoice table as an .xlsx workbook.
func (h *Handlers) ExportInvoices(c *gin.Context) {
	workbook, err := h.exporter.InvoiceWorkbook(h.config.InvoicePageSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		workbook)
}

// fail logs the error and returns a generic 500 body.
func (h *Handlers) fail(c *gin.Context, err error) {
	h.logger.Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
