// csmasimd serves the slotted CSMA/CA simulation engine over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hcoa-iot/csmasim/internal/cache"
	"github.com/hcoa-iot/csmasim/internal/config"
	simmetrics "github.com/hcoa-iot/csmasim/internal/metrics"
	"github.com/hcoa-iot/csmasim/internal/server"
	"github.com/hcoa-iot/csmasim/internal/simrunner"
	appversion "github.com/hcoa-iot/csmasim/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log, logLevel)

	logger.Info("csmasimd starting",
		slog.String("version", appversion.Version),
		slog.String("http_addr", cfg.HTTP.Addr),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	reg := prometheus.NewRegistry()
	collector := simmetrics.NewCollector(reg)

	opts := []simrunner.Option{simrunner.WithMetrics(collector)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cache.Enabled {
		rc, err := cache.Connect(ctx, cfg.Cache.Addr, cfg.Cache.TTL, cfg.Cache.ConnectTimeout, logger)
		if err != nil {
			logger.Error("failed to connect to result cache", slog.String("error", err.Error()))
			return 1
		}
		defer rc.Close()
		opts = append(opts, simrunner.WithCache(rc))
	}

	runner := simrunner.New(logger, opts...)

	if err := runServers(ctx, cfg, runner, reg, logger); err != nil {
		logger.Error("csmasimd exited with error", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("csmasimd stopped")
	return 0
}

// runServers sets up and runs the simulation API and metrics HTTP servers
// using an errgroup with signal-aware context for graceful shutdown.
func runServers(
	ctx context.Context,
	cfg *config.Config,
	runner *simrunner.Runner,
	reg *prometheus.Registry,
	logger *slog.Logger,
) error {
	apiSrv := newAPIServer(cfg.HTTP, runner, logger)
	metricsSrv := newMetricsServer(cfg.Metrics, reg)

	g, gCtx := errgroup.WithContext(ctx)
	lc := net.ListenConfig{}

	g.Go(func() error {
		logger.Info("api server listening", slog.String("addr", cfg.HTTP.Addr))
		return listenAndServe(gCtx, &lc, apiSrv, cfg.HTTP.Addr)
	})

	g.Go(func() error {
		logger.Info("metrics server listening",
			slog.String("addr", cfg.Metrics.Addr),
			slog.String("path", cfg.Metrics.Path),
		)
		return listenAndServe(gCtx, &lc, metricsSrv, cfg.Metrics.Addr)
	})

	g.Go(func() error {
		<-gCtx.Done()
		return gracefulShutdown(context.WithoutCancel(gCtx), cfg.HTTP.ShutdownTimeout, apiSrv, metricsSrv)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run servers: %w", err)
	}
	return nil
}

func gracefulShutdown(ctx context.Context, timeout time.Duration, servers ...*http.Server) error {
	var shutdownErr error
	for _, srv := range servers {
		if err := server.Shutdown(ctx, srv, timeout); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown server: %w", err))
		}
	}
	return shutdownErr
}

func listenAndServe(ctx context.Context, lc *net.ListenConfig, srv *http.Server, addr string) error {
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

func newAPIServer(cfg config.HTTPConfig, runner *simrunner.Runner, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(runner, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newLoggerWithLevel(cfg config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
