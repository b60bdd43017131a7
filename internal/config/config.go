// Package config loads ledger configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment does not override them.
const (
	DefaultDatabasePath = "./data/ledger.db"
	DefaultLogLevel     = "info"
	DefaultTrendMonths  = 6
)

// Config holds the runtime settings of the ledger.
type Config struct {
	// DatabasePath is where the SQLite reference store keeps its file.
	DatabasePath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// TrendMonths is how many calendar months the settlement trend
	// projection covers by default.
	TrendMonths int
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables win over file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: getEnv("LEDGER_DB_PATH", DefaultDatabasePath),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
		TrendMonths:  DefaultTrendMonths,
	}

	if v := os.Getenv("LEDGER_TREND_MONTHS"); v != "" {
		months, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LEDGER_TREND_MONTHS %q: %w", v, err)
		}
		cfg.TrendMonths = months
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.TrendMonths <= 0 {
		return fmt.Errorf("trend months must be positive, got %d", c.TrendMonths)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
