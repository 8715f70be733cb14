package config

import (
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("SWEEP_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.ServiceName != "inkwell" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.UsesPostgres() {
		t.Fatalf("empty dsn must select in-memory stores")
	}
	if cfg.SweepInterval != time.Minute || cfg.TxMaxAttempts != 3 {
		t.Fatalf("unexpected worker defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("POSTGRES_DSN", "postgres://inkwell@localhost/inkwell")
	t.Setenv("SWEEP_INTERVAL", "15s")
	t.Setenv("TX_MAX_ATTEMPTS", "5")
	t.Setenv("METRICS_ENABLED", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.UsesPostgres() || cfg.SweepInterval != 15*time.Second || cfg.TxMaxAttempts != 5 || cfg.MetricsEnabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}
