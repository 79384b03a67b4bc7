package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/careshift/internal/application/dashboard"
	"github.com/rezkam/careshift/internal/config"
	httpapi "github.com/rezkam/careshift/internal/http"
	"github.com/rezkam/careshift/internal/http/handler"
	"github.com/rezkam/careshift/internal/infrastructure/observability"
	"github.com/rezkam/careshift/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/careshift/internal/infrastructure/shiftsource"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config fails.
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
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
		if err := providers.Shutdown(telemetryShutdownTimeout); err != nil {
			slog.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	slog.InfoContext(ctx, "starting careshift server")

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
	slog.InfoContext(ctx, "storage initialized", "dsn", postgres.RedactDSN(cfg.Database.DSN))

	source, err := shiftsource.Open(ctx, cfg.ShiftSource, cfg.Cache, store)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to open shift source: %w", err)
	}
	defer newCleanup(source, store)()

	svc := dashboard.NewService(source, store, dashboard.Config{
		AggregationWorkers: cfg.Dashboard.AggregationWorkers,
		ParallelThreshold:  cfg.Dashboard.ParallelThreshold,
	})

	server := httpapi.NewAPIServer(handler.NewServer(svc), httpapi.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
