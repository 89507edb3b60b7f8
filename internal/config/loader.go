package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "citymesh.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CITYMESH_PORT")
	setString(&cfg.Server.CORSOrigin, "CITYMESH_CORS_ORIGIN")

	// Per-agent endpoint overrides, e.g. CITYMESH_AGENT_FOOD_URL.
	for name := range cfg.Agents.Endpoints {
		key := "CITYMESH_AGENT_" + strings.ToUpper(name) + "_URL"
		if v := os.Getenv(key); v != "" {
			cfg.Agents.Endpoints[name] = v
		}
	}
	setDuration(&cfg.Agents.RequestTimeout, "CITYMESH_AGENT_TIMEOUT")
	setDuration(&cfg.Agents.HealthTimeout, "CITYMESH_AGENT_HEALTH_TIMEOUT")
	setInt(&cfg.Agents.MaxAttempts, "CITYMESH_AGENT_MAX_ATTEMPTS")
	setDuration(&cfg.Agents.BackoffBase, "CITYMESH_AGENT_BACKOFF_BASE")

	setString(&cfg.Logging.Level, "CITYMESH_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CITYMESH_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "CITYMESH_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "CITYMESH_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "CITYMESH_BREAKER_TIMEOUT")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "CITYMESH_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "CITYMESH_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "CITYMESH_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "CITYMESH_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "CITYMESH_PG_HEALTH_CHECK")

	setInt64(&cfg.Cache.MaxCostBytes, "CITYMESH_CACHE_MAX_COST")
	setDuration(&cfg.Cache.StatusTTL, "CITYMESH_STATUS_TTL")

	setInt(&cfg.History.MaxEntries, "CITYMESH_HISTORY_MAX")

	setString(&cfg.MCP.Addr, "CITYMESH_MCP_ADDR")
	setString(&cfg.OTel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if len(cfg.Agents.Endpoints) == 0 {
		return errors.New("agents.endpoints must not be empty")
	}
	for name, url := range cfg.Agents.Endpoints {
		if url == "" {
			return fmt.Errorf("agents.endpoints.%s must not be empty", name)
		}
	}
	if cfg.Agents.MaxAttempts < 1 {
		return errors.New("agents.max_attempts must be >= 1")
	}
	if cfg.Agents.BackoffBase <= 0 {
		return errors.New("agents.backoff_base must be > 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.History.MaxEntries < 1 {
		return errors.New("history.max_entries must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
