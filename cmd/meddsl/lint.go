// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/meddsl/meddsl/internal/linter"
	"github.com/meddsl/meddsl/internal/loader"
)

// lintConfig holds flags for the lint subcommand.
type lintConfig struct {
	strict bool
}

// NewLintCmd creates the lint subcommand.
func NewLintCmd() *cobra.Command {
	cfg := &lintConfig{}

	cmd := &cobra.Command{
		Use:   "lint <ruleset.yaml>",
		Short: "Run static checks against a RuleSet document",
		Long: `Lint loads a RuleSet and runs every static check (duplicate/missing/
unreachable nodes, cycles, empty or unrecognized actions, schema and version
checks) without executing it. Findings are advisory: lint never blocks
execution, but --strict makes the command itself exit non-zero when any
finding is present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, cfg, args[0])
		},
	}

	cmd.Flags().BoolVar(&cfg.strict, "strict", false, "exit with an error if any diagnostic is found")

	return cmd
}

func runLint(cmd *cobra.Command, cfg *lintConfig, path string) error {
	rs, err := loader.FromFile(path)
	if err != nil {
		return oops.Code("LINT_LOAD_FAILED").With("path", path).Wrap(err)
	}

	diags := linter.Lint(rs)
	if len(diags) == 0 {
		cmd.Println("no findings")
		return nil
	}

	for _, d := range diags {
		if d.NodeID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d.Tag, d.NodeID, d.Message)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t-\t%s\n", d.Tag, d.Message)
		}
	}

	if cfg.strict {
		return oops.Code("LINT_STRICT_FAILED").Errorf("%d finding(s)", len(diags))
	}
	return nil
}
