// Command aimtrack serves the benchmark tracking API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/aimtrack/internal/adapters/http/api"
	"github.com/okian/aimtrack/internal/adapters/http/auth"
	"github.com/okian/aimtrack/internal/adapters/http/swagger"
	app "github.com/okian/aimtrack/internal/app"
	"github.com/okian/aimtrack/internal/config"
	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/pkg/logger"
	"github.com/okian/aimtrack/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv, svc, err := setup(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", logger.Error(err))
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	// Uploads accepted before shutdown are still drained into the store.
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "service shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped", logger.Any("stats", svc.GetStats()))
}

// setup builds and starts the service and returns the HTTP server serving it.
func setup(ctx context.Context, cfg *config.Config, log logger.Logger) (*http.Server, *app.Service, error) {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithProgressParallelism(cfg.ProgressParallelism),
	}
	if cfg.CatalogPath != "" {
		c, err := benchmark.Load(cfg.CatalogPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load catalog: %w", err)
		}
		opts = append(opts, app.WithCatalog(c))
	}

	verifier, err := auth.NewVerifier(auth.Config{Mode: auth.Mode(cfg.AuthMode), Secret: cfg.AuthSecret})
	if err != nil {
		return nil, nil, fmt.Errorf("configure auth: %w", err)
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("start service: %w", err)
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithMaxLimit(cfg.MaxLeaderboardLimit),
		api.WithVerifier(verifier),
		api.WithLogger(log),
	).Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}, svc, nil
}

// startSystemMetricsUpdater periodically refreshes process metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically refreshes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics pushes the service's counters into the gauges.
// GetStats refreshes queue, player and worker gauges itself.
func updateServiceMetrics(svc *app.Service) {
	_ = svc.GetStats()
}
