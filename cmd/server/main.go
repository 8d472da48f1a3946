package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/mvarshney/nocontent/internal/buildinfo"
	"github.com/mvarshney/nocontent/internal/config"
	"github.com/mvarshney/nocontent/internal/logging"
	"github.com/mvarshney/nocontent/internal/metrics"
	"github.com/mvarshney/nocontent/internal/router"
	"github.com/mvarshney/nocontent/internal/server"
	"github.com/mvarshney/nocontent/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	lg := logging.New(os.Stderr, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		lg.Error("failed to load config", "error", err)
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		lg.Error("failed to load config", "error", err)
		return err
	}
	lg = logging.New(os.Stderr, level)
	slog.SetDefault(lg)
	lg.Info("starting", "version", buildinfo.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OTEL tracing
	tracingShutdown, err := tracing.Initialize(ctx, lg, buildinfo.ServiceName, buildinfo.Version, cfg.TraceEndpoint)
	if err != nil {
		lg.Error("failed to initialize tracing", "error", err)
		return err
	}
	defer flush(lg, "tracing", tracingShutdown)

	// Initialize OTEL metrics (push to collector)
	meter, metricsShutdown, err := metrics.Initialize(ctx, lg, buildinfo.ServiceName, buildinfo.Version, cfg.MetricsEndpoint)
	if err != nil {
		lg.Error("failed to initialize metrics", "error", err)
		return err
	}
	defer flush(lg, "metrics", metricsShutdown)

	inst, err := metrics.New(meter)
	if err != nil {
		lg.Error("failed to create metric instruments", "error", err)
		return err
	}
	if _, err := metrics.RegisterRuntime(meter); err != nil {
		lg.Warn("failed to start memory monitoring", "error", err)
	}

	ln, err := server.Listen(cfg.Addr())
	if err != nil {
		lg.Error("server failed", "error", err)
		return err
	}

	if err := server.Serve(ctx, lg, ln, router.New(otel.GetTracerProvider(), inst)); err != nil {
		lg.Error("server failed", "error", err)
		return err
	}
	return nil
}

func flush(lg *slog.Logger, what string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		lg.Warn("error shutting down "+what, "error", err)
	}
}
