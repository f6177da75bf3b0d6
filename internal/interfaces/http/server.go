// Package http provides the HTTP adapter for the Query Service. It is a
// thin layer translating requests into repository and service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given handlers
func NewServer(config ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		handlers: handlers,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers for the dashboard frontend
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)

	api := s.router.Group("/api")
	{
		api.GET("/stats", s.handlers.Stats)
		api.GET("/invoice-trends", s.handlers.InvoiceTrends)
		api.GET("/vendors/top10", s.handlers.TopVendors)
		api.GET("/category-spend", s.handlers.CategorySpend)
		api.GET("/cash-outflow", s.handlers.CashOutflow)
		api.GET("/invoices", s.handlers.ListInvoices)

		api.GET("/analytics/revenue-by-month", s.handlers.RevenueByMonth)
		api.GET("/analytics/vendors", s.handlers.VendorBreakdown)
		api.GET("/analytics/categories", s.handlers.CategoryBreakdown)

		api.POST("/seed", s.handlers.RunSeed)
		api.GET("/seed", s.handlers.SeedStatus)

		api.POST("/chat-with-data", s.handlers.ChatWithData)

		api.GET("/export/invoices", s.handlers.ExportInvoices)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
