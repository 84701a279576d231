// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/meddsl/meddsl/internal/loader"
	"github.com/meddsl/meddsl/internal/ruleset"
)

// NewHashCmd creates the hash subcommand.
func NewHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <ruleset.yaml>",
		Short: "Print the canonical content hash of a RuleSet document",
		Long: `Hash loads a RuleSet and prints the lowercase hex SHA-256 digest of its
canonical form - the same rule_hash stamped on every trace entry Execute
produces for it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(cmd, args[0])
		},
	}
}

func runHash(cmd *cobra.Command, path string) error {
	rs, err := loader.FromFile(path)
	if err != nil {
		return oops.Code("HASH_LOAD_FAILED").With("path", path).Wrap(err)
	}

	hash, err := ruleset.Hash(rs.Raw)
	if err != nil {
		return oops.Code("HASH_FAILED").With("path", path).Wrap(err)
	}

	cmd.Println(hash)
	return nil
}
