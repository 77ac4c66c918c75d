// Package main runs the liquidity graph recorder: it polls the network API,
// stores every snapshot and serves /metrics and /health.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xolium-sdk/internal/client"
	"xolium-sdk/internal/config"
	"xolium-sdk/internal/observability"
	"xolium-sdk/internal/recorder"
	"xolium-sdk/internal/storage/backend"
)

// healthWindow is how many missed intervals /health tolerates.
const healthWindow = 3

func main() {
	configPath := flag.String("config", os.Getenv("XOLIUM_CONFIG"), "YAML config file")
	envFile := flag.String("env-file", ".env", "Env file loaded before XOLIUM_* overrides")
	interval := flag.Duration("interval", 0, "Recording interval (overrides config)")
	listenAddr := flag.String("listen-addr", "", "HTTP address for /metrics and /health (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if *interval > 0 {
		cfg.Recorder.Interval = *interval
	}
	if *listenAddr != "" {
		cfg.Recorder.ListenAddr = *listenAddr
	}

	logger := config.NewLogger(cfg.Logging).With().Str("service", "recorder").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()

	c, err := client.New(cfg.Client, nil, client.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("create client")
	}
	defer c.Close()

	runner := recorder.NewRunner(recorder.Options{
		Source:       c.Network,
		Snapshots:    stores.Snapshots,
		Observations: stores.Observations,
		Interval:     cfg.Recorder.Interval,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              cfg.Recorder.ListenAddr,
		Handler:           newMux(runner),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.Recorder.ListenAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server failed")
			cancel()
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()

		// Second signal forces exit.
		sig = <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("forced shutdown")
		os.Exit(1)
	}()

	err = runner.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error().Err(serr).Msg("http shutdown")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("recorder failed")
	}
	logger.Info().Msg("shutdown complete")
}

// newMux serves Prometheus metrics and a health check that fails once no
// snapshot has been recorded for healthWindow intervals.
func newMux(runner *recorder.Runner) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if !runner.Healthy(healthWindow * runner.Interval()) {
			http.Error(w, "stale", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
