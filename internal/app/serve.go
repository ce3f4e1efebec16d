// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blinklabs-io/agora/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run serves prometheus metrics for the governance engine until an
// interrupt or termination signal is received
func Run(cfg *config.Config, logger *slog.Logger) error {
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	return Serve(signalCtx, cfg, logger, nil)
}

// Serve runs the metrics listener until ctx is done. When listener is nil,
// one is opened on the configured bind address and metrics port.
func Serve(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	listener net.Listener,
) error {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "app")
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a, err := Open(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	if err := a.publishInitialGauges(ctx); err != nil {
		return err
	}

	if listener == nil {
		addr := net.JoinHostPort(
			cfg.BindAddr,
			strconv.FormatUint(uint64(cfg.MetricsPort), 10),
		)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to start metrics listener: %w", err)
		}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info(
		"serving prometheus metrics on "+listener.Addr().String(),
		"component", "app",
	)
	metricsServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		if err := metricsServer.Serve(listener); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		logger.Info("signal received, initiating graceful shutdown", "component", "app")
	case err := <-errChan:
		if err != nil {
			logger.Error("metrics listener failed", "component", "app", "error", err)
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.ShutdownDuration(),
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "component", "app", "error", err)
		return err
	}
	logger.Info("shutdown complete", "component", "app")
	return nil
}

// publishInitialGauges reads the current state once so that gauges are
// populated before the first operation
func (a *App) publishInitialGauges(ctx context.Context) error {
	d, err := a.Deployment()
	if err != nil {
		if errors.Is(err, config.ErrNoDeployment) {
			return nil
		}
		return err
	}
	return a.engine.RefreshGauges(ctx, d.Storage, d.SafeController)
}
