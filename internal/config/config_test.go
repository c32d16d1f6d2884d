package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":    "test",
		"APP_PORT":   "8080",
		"DB_USER":    "root",
		"DB_HOST":    "localhost",
		"DB_PORT":    "3306",
		"DB_NAME":    "seats",
		"JWT_SECRET": "secret",
	} {
		t.Setenv(k, v)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HoldTTL != 15*time.Minute || cfg.SweepInterval != 2*time.Minute {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.SeatBasePrice != 100 || cfg.SweeperInServer {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.EventsQueue != "seat.booking.events" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HOLD_TTL", "5m")
	t.Setenv("SWEEPER_IN_SERVER", "yes")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("AMQP_URL", "amqp://broker:5672/")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HoldTTL != 5*time.Minute || !cfg.SweeperInServer || cfg.LogFormat != "json" {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if cfg.AMQPURL != "amqp://broker:5672/" {
		t.Fatalf("amqp url %q", cfg.AMQPURL)
	}
}

func TestFromEnvMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_NAME", "")
	_, err := FromEnv()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") || !strings.Contains(err.Error(), "DB_NAME") {
		t.Fatalf("expected both missing vars reported, got %v", err)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("capacity %d", cfg.Capacity)
	}
	if cfg.TTL != 5*time.Minute {
		t.Fatalf("ttl %v", cfg.TTL)
	}
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || cfg.Methods["POST"] {
		t.Fatalf("methods %v", cfg.Methods)
	}
}
