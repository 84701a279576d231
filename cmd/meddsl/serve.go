// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/meddsl/meddsl/internal/cache"
	"github.com/meddsl/meddsl/internal/observability"
	"github.com/meddsl/meddsl/internal/store"
)

// NewServeCmd creates the serve subcommand: a long-running process that
// keeps the RuleSet cache warm against the store and exposes /metrics,
// /healthz/liveness and /healthz/readiness. It executes nothing itself and accepts no RPC traffic - per
// spec.md, the only way to run a RuleSet is the run subcommand (or a host
// process embedding internal/cache and internal/interpreter directly).
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the RuleSet cache warmer and observability endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.StoreDSN == "" {
		return oops.Code("SERVE_NO_DSN").Errorf("--store_dsn is required")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.StoreDSN)
	if err != nil {
		return oops.Code("SERVE_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	ruleStore := store.NewPostgresRuleSetStore(pool)
	rsCache := cache.New(ruleStore, cache.WithStalenessThreshold(cfg.CacheStale))

	if err := rsCache.Reload(ctx); err != nil {
		return oops.Code("SERVE_INITIAL_RELOAD_FAILED").Wrap(err)
	}
	rsCache.StartWithListener(ctx, store.NewPgListener(pool))

	obsServer := observability.NewServer(cfg.MetricsAddr, func() bool { return !rsCache.IsStale() })
	if err := obsServer.Start(); err != nil {
		cancel()
		rsCache.Wait()
		return oops.Code("SERVE_OBSERVABILITY_START_FAILED").Wrap(err)
	}

	slog.Info("meddsl serve started", "addr", obsServer.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	cancel()
	rsCache.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := obsServer.Stop(stopCtx); err != nil {
		return oops.Code("SERVE_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}
