// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashCommand_PrintsStableHash(t *testing.T) {
	path := writeTempRuleSet(t, cleanRuleSetYAML)

	run := func() string {
		cmd := NewHashCmd()
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{path})
		require.NoError(t, cmd.Execute())
		return strings.TrimSpace(buf.String())
	}

	first := run()
	second := run()

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestHashCommand_MissingFileErrors(t *testing.T) {
	cmd := NewHashCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, cmd.Execute())
}
