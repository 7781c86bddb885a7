// Package config reads service configuration from the environment, loading a
// .env file first when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/joho/godotenv"
)

// Ledger source names accepted in LEDGER_SOURCE.
const (
	SourceFile     = "file"
	SourceGCS      = "gcs"
	SourceBigQuery = "bigquery"
	SourcePostgres = "postgres"
)

type Config struct {
	Port string

	LedgerSource    string
	LedgerPath      string
	LedgerGCSURI    string
	BigQueryProject string
	BigQueryDataset string
	DatabaseURL     string

	RefreshInterval time.Duration
	CacheMaxCost    int64
	CORSOrigins     []string

	LogLevel  string
	LogFormat string
}

// Load reads the configuration. Numeric and duration variables that fail to
// parse are errors; missing variables fall back to defaults.
func Load() (Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		LedgerSource:    strings.ToLower(getEnv("LEDGER_SOURCE", SourceFile)),
		LedgerPath:      getEnv("LEDGER_PATH", "data/transactions.csv"),
		LedgerGCSURI:    getEnv("LEDGER_GCS_URI", ""),
		BigQueryProject: getEnv("BIGQUERY_PROJECT", ""),
		BigQueryDataset: getEnv("BIGQUERY_DATASET", "finance"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
	}

	interval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("Load: REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	maxCost, err := strconv.ParseInt(getEnv("CACHE_MAX_COST", "1000"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("Load: CACHE_MAX_COST: %w", err)
	}
	cfg.CacheMaxCost = maxCost

	return cfg, nil
}

// Validate checks that the selected ledger source has what it needs.
func (c Config) Validate() error {
	switch c.LedgerSource {
	case SourceFile:
		if c.LedgerPath == "" {
			return fmt.Errorf("LEDGER_PATH is required for the file source")
		}
	case SourceGCS:
		if c.LedgerGCSURI == "" {
			return fmt.Errorf("LEDGER_GCS_URI is required for the gcs source")
		}
	case SourceBigQuery:
		if c.BigQueryProject == "" {
			return fmt.Errorf("BIGQUERY_PROJECT is required for the bigquery source")
		}
		if c.BigQueryDataset == "" {
			return fmt.Errorf("BIGQUERY_DATASET is required for the bigquery source")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres source")
		}
	default:
		return fmt.Errorf("LEDGER_SOURCE %q: %w", c.LedgerSource, ledger.ErrUnknownSource)
	}

	if c.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}
	if c.CacheMaxCost <= 0 {
		return fmt.Errorf("CACHE_MAX_COST must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
