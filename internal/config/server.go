package config

import (
	"fmt"
	"time"

	"github.com/rezkam/careshift/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	HTTP            HTTPConfig
	ShiftSource     ShiftSourceConfig
	Cache           CacheConfig
	Dashboard       DashboardConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"CARESHIFT_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"CARESHIFT_HTTP_HOST"`
	Port              string        `env:"CARESHIFT_HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"CARESHIFT_HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `env:"CARESHIFT_HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout       time.Duration `env:"CARESHIFT_HTTP_IDLE_TIMEOUT" default:"120s"`
	ReadHeaderTimeout time.Duration `env:"CARESHIFT_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	MaxHeaderBytes    int           `env:"CARESHIFT_HTTP_MAX_HEADER_BYTES" default:"1048576"`
	MaxBodyBytes      int64         `env:"CARESHIFT_HTTP_MAX_BODY_BYTES" default:"65536"`
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// DashboardConfig tunes dashboard aggregation.
type DashboardConfig struct {
	// AggregationWorkers > 1 classifies large task batches concurrently.
	AggregationWorkers int `env:"CARESHIFT_AGGREGATION_WORKERS" default:"4"`

	// ParallelThreshold is the batch size from which aggregation fans out.
	ParallelThreshold int `env:"CARESHIFT_PARALLEL_THRESHOLD" default:"500"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"CARESHIFT_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"careshift"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
