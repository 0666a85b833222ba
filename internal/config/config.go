// Package config provides runtime configuration sourced from environment
// variables, with a best-effort .env load for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath      = "./quotemate.db"
	defaultPort        = "8080"
	defaultSource      = SourceCatalog
	defaultLookupDelay = 500 * time.Millisecond
)

// Pricing source names accepted in PRICING_SOURCE.
const (
	SourceCatalog   = "catalog"
	SourceEstimator = "estimator"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port   string
	DBPath string

	// PricingSource selects which external lookup reprices materials.
	PricingSource    string
	CatalogBaseURL   string
	CatalogAPIKey    string
	EstimatorBaseURL string
	EstimatorAPIKey  string

	// LookupDelay is the pause between consecutive price lookups.
	LookupDelay time.Duration

	// RefreshSpec is a cron spec (e.g. "@every 6h") for background
	// re-pricing of draft quotes. Empty disables the refresher.
	RefreshSpec string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Production should use real env injection; missing .env is fine.
	_ = godotenv.Load()

	cfg := Config{
		Port:             getenv("PORT", defaultPort),
		DBPath:           getenv("DB_PATH", defaultDBPath),
		PricingSource:    getenv("PRICING_SOURCE", defaultSource),
		CatalogBaseURL:   os.Getenv("CATALOG_BASE_URL"),
		CatalogAPIKey:    os.Getenv("CATALOG_API_KEY"),
		EstimatorBaseURL: os.Getenv("ESTIMATOR_BASE_URL"),
		EstimatorAPIKey:  os.Getenv("ESTIMATOR_API_KEY"),
		LookupDelay:      durenvms("LOOKUP_DELAY_MS", defaultLookupDelay),
		RefreshSpec:      os.Getenv("REFRESH_SPEC"),
	}

	if cfg.PricingSource != SourceCatalog && cfg.PricingSource != SourceEstimator {
		log.Printf("warning: unknown PRICING_SOURCE %q, using %q", cfg.PricingSource, defaultSource)
		cfg.PricingSource = defaultSource
	}

	switch cfg.PricingSource {
	case SourceCatalog:
		if cfg.CatalogBaseURL == "" {
			log.Print("warning: CATALOG_BASE_URL is not set")
		}
		if cfg.CatalogAPIKey == "" {
			log.Print("warning: CATALOG_API_KEY is not set")
		}
	case SourceEstimator:
		if cfg.EstimatorBaseURL == "" {
			log.Print("warning: ESTIMATOR_BASE_URL is not set")
		}
		if cfg.EstimatorAPIKey == "" {
			log.Print("warning: ESTIMATOR_API_KEY is not set")
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durenvms(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		log.Printf("warning: %s must be a non-negative integer, got %q", key, v)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
