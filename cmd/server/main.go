// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

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

	"github.com/tomtom215/licensewatch/internal/api"
	"github.com/tomtom215/licensewatch/internal/auth"
	"github.com/tomtom215/licensewatch/internal/cache"
	"github.com/tomtom215/licensewatch/internal/categorize"
	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/mirror"
	"github.com/tomtom215/licensewatch/internal/pipeline"
	"github.com/tomtom215/licensewatch/internal/probe"
	"github.com/tomtom215/licensewatch/internal/snapshot"
	"github.com/tomtom215/licensewatch/internal/source"
	"github.com/tomtom215/licensewatch/internal/supervisor"
	"github.com/tomtom215/licensewatch/internal/supervisor/services"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a signed refresh token for `subject` and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a token printed by -issue-token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	authenticator, err := auth.NewAuthenticator(cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize refresh authentication")
	}

	if *issueToken != "" {
		token, err := authenticator.IssueToken(*issueToken, *tokenTTL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to issue token")
		}
		fmt.Println(token)
		return
	}

	if err := run(cfg, authenticator); err != nil {
		logging.Fatal().Err(err).Msg("Licensewatch stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config, authenticator *auth.Authenticator) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logging.Info().
		Str("cache_backend", cfg.Cache.Backend).
		Bool("mirror_enabled", cfg.Mirror.Enabled).
		Bool("schedule_enabled", cfg.Schedule.Enabled).
		Bool("write_back_repairs", cfg.Source.WriteBackRepairs).
		Msg("Starting Licensewatch")

	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("edge cache: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing edge cache")
		}
	}()

	rules, err := categorize.NewRules(cfg.Classification)
	if err != nil {
		return fmt.Errorf("classification rules: %w", err)
	}

	src := source.NewBreakerClient(source.NewClient(cfg.Source))
	reader := snapshot.NewReader(store, cfg.Reader)

	opts := pipeline.Options{
		Source:    src,
		Rules:     rules,
		Publisher: snapshot.NewPublisher(store, cfg.Cache),
		Reader:    reader,
		Prober:    probe.New(cfg.Probe),
	}

	if cfg.Mirror.Enabled {
		m, err := mirror.Open(cfg.Mirror)
		if err != nil {
			// reconciliation is advisory; run without it
			logging.Warn().Err(err).Str("path", cfg.Mirror.Path).Msg("Relational mirror unavailable, reconciliation disabled")
		} else {
			defer func() {
				if err := m.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing relational mirror")
				}
			}()
			opts.Mirror = m
		}
	}

	if cfg.Source.WriteBackRepairs {
		opts.WriteBack = source.NewWriteBack(src, cfg.Source.WriteBackRate)
	}

	runner, err := pipeline.NewRunner(opts)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	handler, err := api.NewHandler(runner, reader, store, cfg.Server.Timeout)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mw.RateLimitRequests = cfg.Server.RateLimitReqs
	mw.RateLimitWindow = cfg.Server.RateLimitWindow
	router := api.NewRouter(handler, authenticator, mw)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("supervisor: %w", err)
	}

	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	if cfg.Schedule.Enabled {
		tree.AddRefreshService(services.NewScheduledRefreshService(
			"catalog-refresh", cfg.Schedule.CatalogInterval, cfg.Schedule.RunOnStart,
			func(ctx context.Context) error {
				_, err := runner.RunCatalog(ctx)
				return err
			}).WithPassTimeout(cfg.Server.Timeout))
		tree.AddRefreshService(services.NewScheduledRefreshService(
			"liveness-refresh", cfg.Schedule.LivenessInterval, cfg.Schedule.RunOnStart,
			func(ctx context.Context) error {
				_, err := runner.RunLiveness(ctx)
				return err
			}).WithPassTimeout(cfg.Server.Timeout))
	} else {
		logging.Info().Msg("Scheduled refresh disabled, passes run only on POST /refresh and /refresh-status")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			serveErr = err
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	return serveErr
}
