package main

import (
	"net/http"

	"github.com/jihwankim/eccsim/pkg/config"
	"github.com/jihwankim/eccsim/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// startMetrics builds a telemetry.Metrics registered against a fresh
// registry and, if cfg.Metrics.Enabled, serves it over HTTP from a
// background goroutine so a long-running "run"/"scenario" invocation can be
// scraped while it's still in progress. Returns nil when metrics are
// disabled, so callers can pass the result straight to tester.System/
// Scenario.SetMetrics without a separate enabled check.
func startMetrics(cfg *config.Config, logger *telemetry.Logger) *telemetry.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}

	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Metrics.ListenAddress, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server exited", "error", err, "address", cfg.Metrics.ListenAddress)
		}
	}()
	logger.Info("metrics server started", "address", cfg.Metrics.ListenAddress)

	return m
}
