// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCase(t *testing.T, doc map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "case.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestRunCommand_HighBPTriggersReferral(t *testing.T) {
	rsPath := writeTempRuleSet(t, cleanRuleSetYAML)
	casePath := writeTempCase(t, map[string]any{
		"vitals": map[string]any{"bp_systolic": 190},
	})

	cmd := NewRunCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{rsPath, casePath})

	require.NoError(t, cmd.Execute())

	var result runResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "chest_pain_triage", result.Profile)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, "suggest_referral", result.Actions[0].Type())
	assert.Len(t, result.RuleHash, 64)
}

func TestRunCommand_LowBPAbstains(t *testing.T) {
	rsPath := writeTempRuleSet(t, cleanRuleSetYAML)
	casePath := writeTempCase(t, map[string]any{
		"vitals": map[string]any{"bp_systolic": 120},
	})

	cmd := NewRunCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{rsPath, casePath})

	require.NoError(t, cmd.Execute())

	var result runResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result.Actions, 1)
	assert.Equal(t, "abstain", result.Actions[0].Type())
}

func TestRunCommand_ExplainPrintsProse(t *testing.T) {
	rsPath := writeTempRuleSet(t, cleanRuleSetYAML)
	casePath := writeTempCase(t, map[string]any{
		"vitals": map[string]any{"bp_systolic": 190},
	})

	cmd := NewRunCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--explain", rsPath, casePath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Recommendation:")
	assert.Contains(t, buf.String(), "Rule trace:")
}

func TestRunCommand_RecordWithoutDSNErrors(t *testing.T) {
	rsPath := writeTempRuleSet(t, cleanRuleSetYAML)
	casePath := writeTempCase(t, map[string]any{
		"vitals": map[string]any{"bp_systolic": 190},
	})

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"run", "--record", rsPath, casePath})

	require.Error(t, cmd.Execute())
}

func TestRunCommand_InvalidCaseJSONErrors(t *testing.T) {
	rsPath := writeTempRuleSet(t, cleanRuleSetYAML)
	casePath := filepath.Join(t.TempDir(), "case.json")
	require.NoError(t, os.WriteFile(casePath, []byte("not json"), 0o600))

	cmd := NewRunCmd()
	cmd.SetArgs([]string{rsPath, casePath})
	require.Error(t, cmd.Execute())
}
