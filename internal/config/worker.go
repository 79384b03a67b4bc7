package config

import (
	"fmt"
	"time"

	"github.com/rezkam/careshift/internal/env"
)

// WorkerConfig holds all configuration for the worker binary.
type WorkerConfig struct {
	Database         DatabaseConfig
	ShiftSource      ShiftSourceConfig
	Cache            CacheConfig
	Observability    ObservabilityConfig
	SweepInterval    time.Duration `env:"CARESHIFT_WORKER_SWEEP_INTERVAL" default:"5m"`
	OperationTimeout time.Duration `env:"CARESHIFT_WORKER_OPERATION_TIMEOUT" default:"30s"`

	// FacilityIDs limits the sweep; empty means every facility in the store.
	FacilityIDs []string `env:"CARESHIFT_WORKER_FACILITIES"`
}

// LoadWorkerConfig loads and validates worker configuration from environment.
func LoadWorkerConfig() (*WorkerConfig, error) {
	cfg := &WorkerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load worker config: %w", err)
	}

	return cfg, nil
}
