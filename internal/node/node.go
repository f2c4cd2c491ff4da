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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/ayllu"
	"github.com/blinklabs-io/ayllu/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	return run(
		signalCtx,
		cfg,
		logger,
		prometheus.DefaultRegisterer,
		prometheus.DefaultGatherer,
	)
}

func run(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	registerer prometheus.Registerer,
	gatherer prometheus.Gatherer,
) error {
	logger.Debug(fmt.Sprintf("config: %+v", redacted(cfg)), "component", "node")
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	clock, err := cfg.BlockClock()
	if err != nil {
		return err
	}
	apiListenAddress := ""
	if cfg.ApiPort > 0 {
		apiListenAddress = cfg.ApiListenAddress()
	}
	n, err := ayllu.New(
		ayllu.NewConfig(
			ayllu.WithLogger(logger),
			ayllu.WithDatabasePath(cfg.DatabasePath),
			ayllu.WithBlobPlugin(cfg.BlobPlugin),
			ayllu.WithMetadataPlugin(cfg.MetadataPlugin),
			ayllu.WithPrometheusRegistry(registerer),
			ayllu.WithTracing(cfg.Tracing),
			ayllu.WithTracingStdout(cfg.TracingStdout),
			ayllu.WithShutdownTimeout(shutdownTimeout),
			ayllu.WithApiListenAddress(apiListenAddress),
			ayllu.WithApiJwtSecret([]byte(cfg.ApiJwtSecret)),
			ayllu.WithBlockClock(clock),
			ayllu.WithGovernancePolicy(cfg.GovernancePolicy()),
		),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return n.Run(gctx)
	})
	if cfg.MetricsPort > 0 {
		// Metrics and debug listener
		metricsServer := &http.Server{
			Addr:              cfg.MetricsListenAddress(),
			Handler:           metricsHandler(gatherer),
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		logger.Info(
			"serving prometheus metrics on "+metricsServer.Addr,
			"component", "node",
		)
		g.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to start metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				shutdownTimeout,
			)
			defer cancel()
			//nolint:contextcheck
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		logger.Error("node error", "error", err)
	} else {
		logger.Info("signal received, initiating graceful shutdown")
	}
	if stopErr := n.Stop(); stopErr != nil {
		logger.Error("shutdown errors occurred", "error", stopErr)
		return errors.Join(err, stopErr)
	}
	if err == nil {
		logger.Info("shutdown complete")
	}
	return err
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// redacted hides the API secret from the config dump
func redacted(cfg *config.Config) config.Config {
	ret := *cfg
	if ret.ApiJwtSecret != "" {
		ret.ApiJwtSecret = "<redacted>"
	}
	return ret
}
