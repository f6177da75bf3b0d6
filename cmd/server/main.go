package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/chat"
	"github.com/flowbit/spend-analytics/internal/config"
	"github.com/flowbit/spend-analytics/internal/ingest"
	httpserver "github.com/flowbit/spend-analytics/internal/interfaces/http"
	"github.com/flowbit/spend-analytics/internal/report"
	"github.com/flowbit/spend-analytics/internal/repository"
	"github.com/flowbit/spend-analytics/pkg/database"
	"github.com/flowbit/spend-analytics/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// A .env file is optional; environment variables win over file values.
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting spend analytics service",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	store := repository.NewStore(db, logger)

	chatService := chat.NewService(chat.Config{
		APIKey:      cfg.Chat.APIKey,
		BaseURL:     cfg.Chat.BaseURL,
		Model:       cfg.Chat.Model,
		Temperature: cfg.Chat.Temperature,
		Timeout:     cfg.Chat.Timeout,
	}, db.DB, logger)
	if cfg.Chat.APIKey == "" {
		logger.Warn("No chat API key configured, chat-with-data will answer in degraded mode")
	}

	exporter := report.NewExporter(store.Invoices, logger)
	driver := ingest.NewDriver(store, logger)

	handlers := httpserver.NewHandlers(httpserver.HandlersConfig{
		SampleMode:      cfg.Analytics.SampleMode,
		InvoicePageSize: cfg.Analytics.InvoicePageSize,
		Ingest: ingest.Options{
			SourcePaths:        cfg.Ingest.SourcePaths,
			Wipe:               cfg.Ingest.WipeBeforeLoad,
			AllowUnknownVendor: cfg.Ingest.AllowUnknownVendor,
			ProgressInterval:   cfg.Ingest.ProgressInterval,
		},
	}, store, chatService, exporter, driver, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}
