package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/flowbit/spend-analytics/internal/config"
	"github.com/flowbit/spend-analytics/internal/ingest"
	"github.com/flowbit/spend-analytics/internal/repository"
	"github.com/flowbit/spend-analytics/pkg/database"
	"github.com/flowbit/spend-analytics/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	sourceFile := flag.String("file", "", "source data file (overrides configured candidate paths)")
	wipe := flag.Bool("wipe", false, "clear all tables before loading")
	flag.Parse()

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
	driver := ingest.NewDriver(store, logger)

	opts := ingest.Options{
		SourcePaths:        cfg.Ingest.SourcePaths,
		Wipe:               cfg.Ingest.WipeBeforeLoad || *wipe,
		AllowUnknownVendor: cfg.Ingest.AllowUnknownVendor,
		ProgressInterval:   cfg.Ingest.ProgressInterval,
	}
	if *sourceFile != "" {
		opts.SourcePaths = []string{*sourceFile}
	}

	summary, err := driver.Run(opts)
	if err != nil {
		logger.Fatal("Ingestion run failed", zap.Error(err))
	}

	encoded, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode run summary", zap.Error(err))
	}
	fmt.Println(string(encoded))
}
