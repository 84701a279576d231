// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meddsl/meddsl/internal/errutil"
)

func TestMigrateCommand_HasSubcommands(t *testing.T) {
	cmd := NewMigrateCmd()
	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "version"}, names)
}

func TestMigrateUp_NoDSNErrors(t *testing.T) {
	cmd := NewMigrateCmd()
	cmd.SetArgs([]string{"up"})
	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATE_NO_DSN")
}

func TestMigrateDown_NoDSNErrors(t *testing.T) {
	cmd := NewMigrateCmd()
	cmd.SetArgs([]string{"down"})
	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATE_NO_DSN")
}

func TestMigrateVersion_NoDSNErrors(t *testing.T) {
	cmd := NewMigrateCmd()
	cmd.SetArgs([]string{"version"})
	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATE_NO_DSN")
}
