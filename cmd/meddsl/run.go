// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/meddsl/meddsl/internal/casevalidate"
	"github.com/meddsl/meddsl/internal/explain"
	"github.com/meddsl/meddsl/internal/interpreter"
	"github.com/meddsl/meddsl/internal/loader"
	"github.com/meddsl/meddsl/internal/retrieval"
	"github.com/meddsl/meddsl/internal/ruleset"
	"github.com/meddsl/meddsl/internal/store"
	"github.com/meddsl/meddsl/internal/value"
)

// runConfig holds flags for the run subcommand.
type runConfig struct {
	schemaPath    string
	citationsDir  string
	explainOutput bool
	record        bool
}

// runResult is the JSON document printed by `meddsl run` absent --explain.
type runResult struct {
	Profile  string             `json:"profile"`
	Version  string             `json:"version"`
	RuleHash string             `json:"rule_hash"`
	Actions  []ruleset.Action   `json:"actions"`
	Trace    []interpreter.TraceEntry `json:"trace"`
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run <ruleset.yaml> <case.json>",
		Short: "Execute a RuleSet against a case document",
		Long: `Run loads a RuleSet and a JSON case document, executes the RuleSet against
the case, and prints the resulting actions and execution trace. Execution
never raises for anything short of a RuleSet authoring defect - every other
failure mode surfaces as a SafetyStop trace entry.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, cfg, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&cfg.schemaPath, "schema", "", "JSON Schema file to validate the case document against before execution")
	cmd.Flags().StringVar(&cfg.citationsDir, "citations-dir", "", "directory of *.jsonl citation snippet files for --explain")
	cmd.Flags().BoolVar(&cfg.explainOutput, "explain", false, "print a clinician-facing explanation instead of raw JSON")
	cmd.Flags().BoolVar(&cfg.record, "record", false, "persist the execution to the RuleSet store's audit trail (requires --store_dsn)")

	return cmd
}

func runRun(cmd *cobra.Command, cfg *runConfig, rsPath, casePath string) error {
	globalCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rs, err := loader.FromFile(rsPath)
	if err != nil {
		return oops.Code("RUN_LOAD_FAILED").With("path", rsPath).Wrap(err)
	}

	caseBytes, err := os.ReadFile(casePath)
	if err != nil {
		return oops.Code("RUN_CASE_READ_FAILED").With("path", casePath).Wrap(err)
	}
	var caseRaw map[string]any
	if err := json.Unmarshal(caseBytes, &caseRaw); err != nil {
		return oops.Code("RUN_CASE_DECODE_FAILED").With("path", casePath).Wrap(err)
	}

	if cfg.schemaPath != "" {
		if err := validateCase(cfg.schemaPath, caseRaw); err != nil {
			return err
		}
	}

	caseRecord := make(map[string]value.Value, len(caseRaw))
	for k, v := range caseRaw {
		caseRecord[k] = value.FromInterface(v)
	}

	actions, trace, err := interpreter.Execute(rs, caseRecord)
	if err != nil {
		return oops.Code("RUN_EXECUTE_FAILED").With("profile", rs.Meta.Profile).Wrap(err)
	}

	if cfg.record {
		if err := recordExecution(cmd.Context(), globalCfg.StoreDSN, rs, caseBytes, actions, trace); err != nil {
			return err
		}
	}

	if cfg.explainOutput {
		citeStore, err := loadCitations(cfg.citationsDir)
		if err != nil {
			return err
		}
		explanation := explain.Explain(actions, trace, citeStore)
		cmd.Println(explanation.Prose)
		return nil
	}

	out, err := json.MarshalIndent(runResult{
		Profile:  rs.Meta.Profile,
		Version:  rs.Meta.Version,
		RuleHash: firstTraceRuleHash(trace),
		Actions:  actions,
		Trace:    trace,
	}, "", "  ")
	if err != nil {
		return oops.Code("RUN_ENCODE_FAILED").Wrap(err)
	}
	cmd.Println(string(out))
	return nil
}

// firstTraceRuleHash pulls the rule_hash every TraceEntry carries, or "" if the
// RuleSet produced no trace at all (an empty graph would be rejected by
// ValidateStructure before execution, so this is effectively unreachable).
func firstTraceRuleHash(trace []interpreter.TraceEntry) string {
	if len(trace) == 0 {
		return ""
	}
	return trace[0].RuleHash
}

func validateCase(schemaPath string, caseRaw map[string]any) error {
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		return oops.Code("RUN_SCHEMA_READ_FAILED").With("path", schemaPath).Wrap(err)
	}
	validator, err := casevalidate.New(schemaPath, schemaBytes)
	if err != nil {
		return oops.Code("RUN_SCHEMA_COMPILE_FAILED").With("path", schemaPath).Wrap(err)
	}
	if violations := validator.Validate(caseRaw); len(violations) > 0 {
		lines := make([]string, 0, len(violations))
		for _, v := range violations {
			lines = append(lines, v.Path+": "+v.Message)
		}
		return oops.Code("RUN_CASE_INVALID").With("violations", lines).Errorf("case document failed schema validation")
	}
	return nil
}

func loadCitations(dir string) (*retrieval.Store, error) {
	if dir == "" {
		return nil, nil
	}
	citeStore, err := retrieval.LoadDir(os.DirFS(dir), ".")
	if err != nil {
		return nil, oops.Code("RUN_CITATIONS_LOAD_FAILED").With("dir", dir).Wrap(err)
	}
	return citeStore, nil
}

func recordExecution(ctx context.Context, storeDSN string, rs ruleset.RuleSet, caseBytes []byte, actions []ruleset.Action, trace []interpreter.TraceEntry) error {
	if storeDSN == "" {
		return oops.Code("RUN_RECORD_NO_DSN").Errorf("--record requires --store_dsn or a configured store DSN")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, storeDSN)
	if err != nil {
		return oops.Code("RUN_RECORD_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	ruleStore := store.NewPostgresRuleSetStore(pool)
	stored, err := ruleStore.GetByProfile(ctx, rs.Meta.Profile)
	if err != nil {
		return oops.Code("RUN_RECORD_LOOKUP_FAILED").With("profile", rs.Meta.Profile).Wrap(err)
	}

	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return oops.Code("RUN_RECORD_ENCODE_FAILED").Wrap(err)
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		return oops.Code("RUN_RECORD_ENCODE_FAILED").Wrap(err)
	}

	rec := &store.ExecutionRecord{
		RuleSetID:   stored.ID,
		RuleHash:    stored.Hash,
		CaseJSON:    caseBytes,
		ActionsJSON: actionsJSON,
		TraceJSON:   traceJSON,
	}
	if err := ruleStore.RecordExecution(ctx, rec); err != nil {
		return oops.Code("RUN_RECORD_FAILED").Wrap(err)
	}
	return nil
}
