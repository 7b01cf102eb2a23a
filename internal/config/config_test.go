package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("AppEnv = %s, want dev", cfg.AppEnv)
	}
	if cfg.ServiceName != "prediction-league" {
		t.Fatalf("ServiceName = %s, want prediction-league", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %s, want :8080", cfg.HTTPAddr)
	}
	if cfg.CutoffWindow != time.Hour {
		t.Fatalf("CutoffWindow = %s, want 1h", cfg.CutoffWindow)
	}
	if cfg.SettlementWorkers != 8 || cfg.BulkIngestWorkers != 4 {
		t.Fatalf("workers = %d/%d, want 8/4", cfg.SettlementWorkers, cfg.BulkIngestWorkers)
	}
	if cfg.SettlementSLA != 5*time.Minute {
		t.Fatalf("SettlementSLA = %s, want 5m", cfg.SettlementSLA)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != 30*time.Second {
		t.Fatalf("cache = %v/%s, want enabled with 30s TTL", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %v, want [*]", cfg.CORSAllowedOrigins)
	}
	if cfg.EventFeedEnabled {
		t.Fatal("event feed should default to disabled")
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PREDICTION_CUTOFF_WINDOW", "30m")
	t.Setenv("SETTLEMENT_WORKERS", "16")
	t.Setenv("SETTLEMENT_SLA", "10m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("EVENT_FEED_ENABLED", "true")
	t.Setenv("EVENT_FEED_TARGET_URL", "https://feed.example.com/events")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.AppEnv != EnvProd {
		t.Fatalf("AppEnv = %s, want prod", cfg.AppEnv)
	}
	if cfg.CutoffWindow != 30*time.Minute {
		t.Fatalf("CutoffWindow = %s, want 30m", cfg.CutoffWindow)
	}
	if cfg.SettlementWorkers != 16 {
		t.Fatalf("SettlementWorkers = %d, want 16", cfg.SettlementWorkers)
	}
	if cfg.SettlementSLA != 10*time.Minute {
		t.Fatalf("SettlementSLA = %s, want 10m", cfg.SettlementSLA)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.EventFeedEnabled || cfg.EventFeedTargetURL != "https://feed.example.com/events" {
		t.Fatalf("event feed = %v/%s", cfg.EventFeedEnabled, cfg.EventFeedTargetURL)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown app env", "APP_ENV", "sandbox"},
		{"negative cutoff window", "PREDICTION_CUTOFF_WINDOW", "-5m"},
		{"malformed cutoff window", "PREDICTION_CUTOFF_WINDOW", "soon"},
		{"zero settlement workers", "SETTLEMENT_WORKERS", "0"},
		{"non-numeric workers", "BULK_INGEST_WORKERS", "many"},
		{"zero settlement SLA", "SETTLEMENT_SLA", "0s"},
		{"zero cache TTL", "CACHE_TTL", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load should reject %s=%s", tt.key, tt.value)
			}
		})
	}

	t.Run("event feed needs a target", func(t *testing.T) {
		t.Setenv("EVENT_FEED_ENABLED", "true")
		t.Setenv("EVENT_FEED_TARGET_URL", "")
		if _, err := Load(); err == nil {
			t.Fatal("Load should reject an enabled feed without a target URL")
		}
	})
}
