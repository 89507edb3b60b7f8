package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8004" {
		t.Errorf("expected port 8004, got %s", cfg.Server.Port)
	}
	if cfg.Agents.MaxAttempts != 3 {
		t.Errorf("expected max_attempts 3, got %d", cfg.Agents.MaxAttempts)
	}
	if cfg.Agents.BackoffBase != time.Second {
		t.Errorf("expected backoff_base 1s, got %v", cfg.Agents.BackoffBase)
	}
	if cfg.Agents.HealthTimeout != 5*time.Second {
		t.Errorf("expected health_timeout 5s, got %v", cfg.Agents.HealthTimeout)
	}
	if got := cfg.Agents.Endpoints["food"]; got != "http://localhost:8000" {
		t.Errorf("expected default food endpoint, got %s", got)
	}
	if cfg.History.MaxEntries != 1000 {
		t.Errorf("expected history cap 1000, got %d", cfg.History.MaxEntries)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
agents:
  max_attempts: 5
  request_timeout: 10s
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Agents.MaxAttempts != 5 {
		t.Errorf("expected max_attempts 5, got %d", cfg.Agents.MaxAttempts)
	}
	if cfg.Agents.RequestTimeout != 10*time.Second {
		t.Errorf("expected request_timeout 10s, got %v", cfg.Agents.RequestTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.Agents.BackoffBase != time.Second {
		t.Errorf("expected default backoff_base, got %v", cfg.Agents.BackoffBase)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	if err := loadYAML(&cfg, "/nonexistent/path.yaml"); err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("CITYMESH_PORT", "7070")
	t.Setenv("CITYMESH_AGENT_FOOD_URL", "http://food.internal:9000")
	t.Setenv("CITYMESH_AGENT_MAX_ATTEMPTS", "4")
	t.Setenv("CITYMESH_AGENT_BACKOFF_BASE", "250ms")
	t.Setenv("CITYMESH_LOG_LEVEL", "warn")
	t.Setenv("NATS_URL", "nats://broker:4222")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if got := cfg.Agents.Endpoints["food"]; got != "http://food.internal:9000" {
		t.Errorf("expected env food endpoint, got %s", got)
	}
	if cfg.Agents.MaxAttempts != 4 {
		t.Errorf("expected max_attempts 4, got %d", cfg.Agents.MaxAttempts)
	}
	if cfg.Agents.BackoffBase != 250*time.Millisecond {
		t.Errorf("expected backoff_base 250ms, got %v", cfg.Agents.BackoffBase)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.NATS.URL != "nats://broker:4222" {
		t.Errorf("expected NATS URL from env, got %s", cfg.NATS.URL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"empty port", func(cfg *Config) { cfg.Server.Port = "" }},
		{"no endpoints", func(cfg *Config) { cfg.Agents.Endpoints = nil }},
		{"blank endpoint", func(cfg *Config) { cfg.Agents.Endpoints["food"] = "" }},
		{"zero attempts", func(cfg *Config) { cfg.Agents.MaxAttempts = 0 }},
		{"zero backoff", func(cfg *Config) { cfg.Agents.BackoffBase = 0 }},
		{"zero history cap", func(cfg *Config) { cfg.History.MaxEntries = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := validate(&cfg); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}

	cfg := Defaults()
	if err := validate(&cfg); err != nil {
		t.Errorf("defaults must validate, got %v", err)
	}
}
