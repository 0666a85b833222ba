package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DB_PATH", "PRICING_SOURCE",
		"CATALOG_BASE_URL", "CATALOG_API_KEY",
		"ESTIMATOR_BASE_URL", "ESTIMATOR_API_KEY",
		"LOOKUP_DELAY_MS", "REFRESH_SPEC",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != defaultPort || cfg.DBPath != defaultDBPath {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PricingSource != SourceCatalog {
		t.Fatalf("PricingSource = %q, want %q", cfg.PricingSource, SourceCatalog)
	}
	if cfg.LookupDelay != defaultLookupDelay {
		t.Fatalf("LookupDelay = %v, want %v", cfg.LookupDelay, defaultLookupDelay)
	}
	if cfg.RefreshSpec != "" {
		t.Fatalf("RefreshSpec should default to disabled, got %q", cfg.RefreshSpec)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/q.db")
	t.Setenv("PRICING_SOURCE", SourceEstimator)
	t.Setenv("ESTIMATOR_BASE_URL", "https://estimator.example.com")
	t.Setenv("ESTIMATOR_API_KEY", "secret")
	t.Setenv("LOOKUP_DELAY_MS", "250")
	t.Setenv("REFRESH_SPEC", "@every 6h")

	cfg := Load()

	if cfg.Port != "9090" || cfg.DBPath != "/tmp/q.db" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.PricingSource != SourceEstimator || cfg.EstimatorAPIKey != "secret" {
		t.Fatalf("estimator config not applied: %+v", cfg)
	}
	if cfg.LookupDelay != 250*time.Millisecond {
		t.Fatalf("LookupDelay = %v, want 250ms", cfg.LookupDelay)
	}
	if cfg.RefreshSpec != "@every 6h" {
		t.Fatalf("RefreshSpec = %q", cfg.RefreshSpec)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PRICING_SOURCE", "crystal_ball")
	t.Setenv("LOOKUP_DELAY_MS", "soon")

	cfg := Load()

	if cfg.PricingSource != SourceCatalog {
		t.Fatalf("unknown source should fall back to catalog, got %q", cfg.PricingSource)
	}
	if cfg.LookupDelay != defaultLookupDelay {
		t.Fatalf("bad delay should fall back to default, got %v", cfg.LookupDelay)
	}
}
