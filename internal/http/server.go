package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rezkam/careshift/internal/http/handler"
)

// Default configuration values for the HTTP server.
const (
	DefaultHost              = "" // all interfaces
	DefaultPort              = "8080"
	DefaultReadTimeout       = 5 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20
	DefaultMaxBodyBytes      = 64 << 10
)

// ServerConfig holds configuration for the HTTP server and router.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
}

func orDefault[T ~int | ~int64 | ~string](v, def T) T {
	var zero T
	if v <= zero {
		return def
	}
	return v
}

// applyDefaults fills zero or negative fields.
func (cfg *ServerConfig) applyDefaults() {
	cfg.Port = orDefault(cfg.Port, DefaultPort)
	cfg.ReadTimeout = orDefault(cfg.ReadTimeout, DefaultReadTimeout)
	cfg.WriteTimeout = orDefault(cfg.WriteTimeout, DefaultWriteTimeout)
	cfg.IdleTimeout = orDefault(cfg.IdleTimeout, DefaultIdleTimeout)
	cfg.ReadHeaderTimeout = orDefault(cfg.ReadHeaderTimeout, DefaultReadHeaderTimeout)
	cfg.MaxHeaderBytes = orDefault(cfg.MaxHeaderBytes, DefaultMaxHeaderBytes)
	cfg.MaxBodyBytes = orDefault(cfg.MaxBodyBytes, DefaultMaxBodyBytes)
}

// APIServer serves the careshift API.
type APIServer struct {
	server *http.Server
}

// NewAPIServer builds the router around h and configures the listener.
// Zero config values use defaults.
func NewAPIServer(h *handler.Server, cfg ServerConfig) *APIServer {
	cfg.applyDefaults()

	return &APIServer{
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:           instrument(NewRouter(h, cfg.MaxBodyBytes)),
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}
}

// Addr returns the configured listen address.
func (s *APIServer) Addr() string {
	return s.server.Addr
}

// Start blocks serving the API. After Shutdown it returns http.ErrServerClosed.
func (s *APIServer) Start() error {
	slog.Info("careshift api listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "careshift api draining")
	return s.server.Shutdown(ctx)
}

// Handler exposes the instrumented router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
