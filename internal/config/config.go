package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// IngestConfig holds ingestion run configuration
type IngestConfig struct {
	// SourcePaths is probed in order; the first existing file wins.
	SourcePaths []string `mapstructure:"source_paths"`
	// WipeBeforeLoad clears all tables before a run.
	WipeBeforeLoad bool `mapstructure:"wipe_before_load"`
	// AllowUnknownVendor substitutes a placeholder vendor instead of
	// skipping records that carry no vendor name.
	AllowUnknownVendor bool `mapstructure:"allow_unknown_vendor"`
	// ProgressInterval is how many processed records between progress logs.
	ProgressInterval int `mapstructure:"progress_interval"`
}

// AnalyticsConfig holds Query Service behavior configuration
type AnalyticsConfig struct {
	// SampleMode serves fixed demo payloads for the stats, trend and
	// top-vendor endpoints instead of live aggregates.
	SampleMode bool `mapstructure:"sample_mode"`
	// InvoicePageSize bounds the /api/invoices listing.
	InvoicePageSize int `mapstructure:"invoice_page_size"`
}

// ChatConfig holds the natural-language-to-SQL service configuration
type ChatConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/analytics.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Ingest defaults: the candidate locations the upstream export lands in
	viper.SetDefault("ingest.source_paths", []string{
		"Analytics_Test_Data.json",
		"data/Analytics_Test_Data.json",
		"../Analytics_Test_Data.json",
		"../data/Analytics_Test_Data.json",
	})
	viper.SetDefault("ingest.wipe_before_load", false)
	viper.SetDefault("ingest.allow_unknown_vendor", false)
	viper.SetDefault("ingest.progress_interval", 25)

	// Analytics defaults
	viper.SetDefault("analytics.sample_mode", false)
	viper.SetDefault("analytics.invoice_page_size", 50)

	// Chat defaults
	viper.SetDefault("chat.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("chat.model", "llama3-8b-8192")
	viper.SetDefault("chat.temperature", 0.1)
	viper.SetDefault("chat.timeout", 60*time.Second)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("chat.api_key", "GROQ_API_KEY")
	viper.BindEnv("chat.base_url", "CHAT_BASE_URL")
	viper.BindEnv("chat.model", "CHAT_MODEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if len(c.Ingest.SourcePaths) == 0 {
		return fmt.Errorf("ingest.source_paths must not be empty")
	}
	if c.Ingest.ProgressInterval <= 0 {
		return fmt.Errorf("ingest.progress_interval must be positive")
	}
	if c.Analytics.InvoicePageSize <= 0 {
		return fmt.Errorf("analytics.invoice_page_size must be positive")
	}
	// A missing chat API key is not a startup error: the chat endpoint
	// degrades to a fallback message instead.
	return nil
}
