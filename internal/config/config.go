// Package config provides hierarchical configuration loading for CityMesh.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the CityMesh decision core.
type Config struct {
	Server   Server   `yaml:"server"`
	Agents   Agents   `yaml:"agents"`
	Logging  Logging  `yaml:"logging"`
	Breaker  Breaker  `yaml:"breaker"`
	NATS     NATS     `yaml:"nats"`
	Postgres Postgres `yaml:"postgres"`
	Cache    Cache    `yaml:"cache"`
	History  History  `yaml:"history"`
	MCP      MCP      `yaml:"mcp"`
	OTel     OTel     `yaml:"otel"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Agents holds the static endpoint registry and outbound call tuning.
// Endpoints maps an agent type name to its base URL; the map is read-only
// after startup.
type Agents struct {
	Endpoints      map[string]string `yaml:"endpoints"`
	RequestTimeout time.Duration     `yaml:"request_timeout"` // per-attempt timeout for send/query
	HealthTimeout  time.Duration     `yaml:"health_timeout"`  // per-attempt timeout for health probes
	MaxAttempts    int               `yaml:"max_attempts"`    // total send attempts (initial + retries)
	BackoffBase    time.Duration     `yaml:"backoff_base"`    // first retry delay; doubles per attempt
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds per-agent circuit breaker configuration.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// NATS holds NATS JetStream configuration. An empty URL disables event
// publication.
type NATS struct {
	URL string `yaml:"url"`
}

// Postgres holds the optional decision archive configuration. An empty DSN
// keeps history in memory only.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// Cache holds the in-process cache configuration.
type Cache struct {
	MaxCostBytes int64         `yaml:"max_cost_bytes"`
	StatusTTL    time.Duration `yaml:"status_ttl"` // how long a health sweep result stays fresh
}

// History holds decision history retention configuration.
type History struct {
	MaxEntries int `yaml:"max_entries"`
}

// MCP holds the Model Context Protocol server configuration. An empty
// address disables the MCP surface.
type MCP struct {
	Addr string `yaml:"addr"`
}

// OTel holds OpenTelemetry export configuration. An empty endpoint disables
// the OTLP exporters; instrumentation then stays no-op.
type OTel struct {
	Endpoint string `yaml:"endpoint"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8004",
			CORSOrigin: "*",
		},
		Agents: Agents{
			Endpoints: map[string]string{
				"food":       "http://localhost:8000",
				"regulatory": "http://localhost:8001",
				"transport":  "http://localhost:8002",
				"festival":   "http://localhost:8003",
			},
			RequestTimeout: 30 * time.Second,
			HealthTimeout:  5 * time.Second,
			MaxAttempts:    3,
			BackoffBase:    time.Second,
		},
		Logging: Logging{
			Level:   "info",
			Service: "citymesh-decision",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Postgres: Postgres{
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
			HealthCheck:     time.Minute,
		},
		Cache: Cache{
			MaxCostBytes: 1 << 20,
			StatusTTL:    5 * time.Second,
		},
		History: History{
			MaxEntries: 1000,
		},
	}
}
