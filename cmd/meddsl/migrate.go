// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/meddsl/meddsl/internal/store"
)

// NewMigrateCmd creates the migrate subcommand and its up/down/version
// children, operating internal/store's schema against --store_dsn.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the RuleSet store's database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  withMigrator(func(m *store.Migrator) error { return m.Up() }),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping the schema",
		RunE:  withMigrator(func(m *store.Migrator) error { return m.Down() }),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateVersion(cmd)
		},
	})

	return cmd
}

// withMigrator wires a cobra RunE that opens a Migrator against the
// configured store DSN, runs fn, and always closes it.
func withMigrator(fn func(*store.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.StoreDSN == "" {
			return oops.Code("MIGRATE_NO_DSN").Errorf("--store_dsn is required")
		}

		m, err := store.NewMigrator(cfg.StoreDSN)
		if err != nil {
			return oops.Code("MIGRATE_INIT_FAILED").Wrap(err)
		}
		defer func() { _ = m.Close() }()

		if err := fn(m); err != nil {
			return err
		}
		cmd.Println("ok")
		return nil
	}
}

func runMigrateVersion(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.StoreDSN == "" {
		return oops.Code("MIGRATE_NO_DSN").Errorf("--store_dsn is required")
	}

	m, err := store.NewMigrator(cfg.StoreDSN)
	if err != nil {
		return oops.Code("MIGRATE_INIT_FAILED").Wrap(err)
	}
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		return oops.Code("MIGRATE_VERSION_FAILED").Wrap(err)
	}
	if dirty {
		cmd.Printf("%d (dirty)\n", version)
		return nil
	}
	cmd.Printf("%d\n", version)
	return nil
}
