// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meddsl/meddsl/internal/config"
	"github.com/meddsl/meddsl/internal/logging"
	"github.com/meddsl/meddsl/internal/xdg"
)

// configFile is the global --config flag value, populated before any
// subcommand's RunE executes.
var configFile string

// NewRootCmd creates the root command for the meddsl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "meddsl",
		Short:   "meddsl - a deterministic, auditable clinical rule engine",
		Version: version + " (" + commit + ")",
		Long: `meddsl loads, lints, and executes clinical-triage RuleSets: deterministic
decision graphs that produce a full, replayable execution trace and never
perform a side effect of their own.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	registerConfigFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewLintCmd())
	cmd.AddCommand(NewHashCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewServeCmd())

	return cmd
}

// registerConfigFlags registers every internal/config.Config field as a
// flag, so config.Load's posflag layer can override file/default values
// from the command line.
func registerConfigFlags(flags *pflag.FlagSet) {
	d := config.Defaults()
	flags.String("log_format", d.LogFormat, "log output format: json or text")
	flags.String("store_dsn", d.StoreDSN, "PostgreSQL connection string for the RuleSet store")
	flags.String("metrics_addr", d.MetricsAddr, "bind address for the observability server")
	flags.Duration("cache_stale", d.CacheStale, "RuleSet cache staleness threshold")
	flags.Int("cache_capacity", d.CacheCapacity, "expected RuleSet cache capacity hint")
}

// loadConfig resolves the layered config (defaults -> --config file ->
// flags) for the given command and also initializes the default logger,
// since every subcommand needs both.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFile
	if path == "" {
		path = defaultConfigPath()
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	logging.SetDefault("meddsl", version, cfg.LogFormat)
	return cfg, nil
}

// defaultConfigPath returns the XDG config file meddsl reads when --config
// isn't given, or "" if the user has never created one (config.Load treats
// "" as "defaults and flags only", not an error).
func defaultConfigPath() string {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
