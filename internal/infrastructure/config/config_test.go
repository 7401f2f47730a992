package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/iho/creditdesk/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.SweepInterval != 30*time.Second {
		t.Fatalf("expected default sweep interval 30s, got %s", cfg.SweepInterval)
	}

	if cfg.ProgressAfter != time.Minute || cfg.CompleteAfter != 10*time.Minute {
		t.Fatalf("unexpected default thresholds: %s / %s", cfg.ProgressAfter, cfg.CompleteAfter)
	}

	if cfg.NotifyRetryBudget != 3*time.Second {
		t.Fatalf("expected default notify retry budget 3s, got %s", cfg.NotifyRetryBudget)
	}

	want := map[string]int64{"logo": 5, "banner": 3, "social": 2, "edit": 4}
	for serviceType, cost := range want {
		if cfg.ServiceCosts[serviceType] != cost {
			t.Fatalf("expected %s to cost %d, got %d", serviceType, cost, cfg.ServiceCosts[serviceType])
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("SWEEP_INTERVAL", "10s")
	t.Setenv("SERVICE_COSTS", "logo:7,audit:1")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.SweepInterval != 10*time.Second {
		t.Fatalf("expected sweep interval override, got %s", cfg.SweepInterval)
	}

	if cfg.ServiceCosts["logo"] != 7 || cfg.ServiceCosts["audit"] != 1 {
		t.Fatalf("expected service cost override, got %v", cfg.ServiceCosts)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	t.Setenv("PROGRESS_AFTER", "10m")
	t.Setenv("COMPLETE_AFTER", "1m")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error when completion threshold precedes progress threshold")
	}
}

func TestLoadRejectsOversizedRetryBudget(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("NOTIFY_RETRY_BUDGET", "30s")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error when the retry budget reaches the sweep interval")
	}
}

func TestLoadRejectsNonPositiveCost(t *testing.T) {
	t.Setenv("SERVICE_COSTS", "logo:0")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for zero service cost")
	}
}
