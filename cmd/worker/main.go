package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/careshift/internal/application/dashboard"
	"github.com/rezkam/careshift/internal/application/worker"
	"github.com/rezkam/careshift/internal/config"
	"github.com/rezkam/careshift/internal/infrastructure/observability"
	"github.com/rezkam/careshift/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/careshift/internal/infrastructure/shiftsource"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(5 * time.Second); err != nil {
			slog.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()
	slog.InfoContext(ctx, "storage initialized", "dsn", postgres.RedactDSN(cfg.Database.DSN))

	source, err := shiftsource.Open(ctx, cfg.ShiftSource, cfg.Cache, store)
	if err != nil {
		return fmt.Errorf("failed to open shift source: %w", err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			slog.Error("failed to close shift source", "error", err)
		}
	}()

	svc := dashboard.NewService(source, store, dashboard.Config{})

	w := worker.New(svc,
		worker.WithSweepInterval(cfg.SweepInterval),
		worker.WithOperationTimeout(cfg.OperationTimeout),
		worker.WithFacilities(cfg.FacilityIDs...),
	)

	// Start returns once ctx is cancelled and the in-flight sweep is done.
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("worker failed: %w", err)
	}

	slog.Info("worker shut down gracefully")
	return nil
}
