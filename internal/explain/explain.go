// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

// Package explain turns an interpreter.Execute result into a bullet-point
// rule trace, citation list, and clinician-facing prose summary.
package explain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meddsl/meddsl/internal/interpreter"
	"github.com/meddsl/meddsl/internal/retrieval"
	"github.com/meddsl/meddsl/internal/ruleset"
)

// maxCitations caps the citation list at 3, matching the "2-3 citations"
// guidance an explanation is meant to surface.
const maxCitations = 3

// Explanation is the rendered output of a single execution.
type Explanation struct {
	RuleTrace []string
	Actions   []ruleset.Action
	Citations []string
	Prose     string
}

// Explain builds an Explanation from a completed execution. citeStore may
// be nil, in which case no citations are rendered.
func Explain(actions []ruleset.Action, trace []interpreter.TraceEntry, citeStore *retrieval.Store) Explanation {
	ruleTrace := buildRuleTrace(trace)
	citations := buildCitations(trace, citeStore)
	prose := buildProse(actions, ruleTrace, citations)

	return Explanation{
		RuleTrace: ruleTrace,
		Actions:   actions,
		Citations: citations,
		Prose:     prose,
	}
}

func buildRuleTrace(trace []interpreter.TraceEntry) []string {
	lines := make([]string, 0, len(trace))
	for _, e := range trace {
		switch e.Kind {
		case "decision":
			lines = append(lines, fmt.Sprintf("%s: condition was %s", e.NodeID, strings.ToUpper(e.Outcome)))
		case "action":
			if len(e.Actions) == 0 {
				lines = append(lines, fmt.Sprintf("%s: no actions", e.NodeID))
				continue
			}
			descs := make([]string, 0, len(e.Actions))
			for _, a := range e.Actions {
				descs = append(descs, formatAction(a))
			}
			lines = append(lines, fmt.Sprintf("%s: %s", e.NodeID, strings.Join(descs, ", ")))
		case "safety_stop":
			lines = append(lines, fmt.Sprintf("SAFETY STOP: %s", e.Outcome))
		default:
			lines = append(lines, fmt.Sprintf("%s: %s", e.NodeID, e.Outcome))
		}
	}
	return lines
}

func formatAction(a ruleset.Action) string {
	switch a.Type() {
	case "suggest_referral":
		specialty := stringField(a, "specialty", "unknown")
		urgency := stringField(a, "urgency", "routine")
		return fmt.Sprintf("refer to %s (%s)", specialty, urgency)
	case "order_test":
		testType := stringField(a, "test_type", "unknown")
		return fmt.Sprintf("order %s", testType)
	case "set_followup":
		interval := stringField(a, "interval", "unknown")
		return fmt.Sprintf("follow-up in %s", interval)
	case "abstain":
		reason := stringField(a, "reason", "insufficient data")
		return fmt.Sprintf("abstain (%s)", reason)
	default:
		encoded, err := json.Marshal(a)
		if err != nil {
			return a.Type()
		}
		return fmt.Sprintf("%s: %s", a.Type(), string(encoded))
	}
}

func stringField(a ruleset.Action, key, fallback string) string {
	if v, ok := a[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func buildCitations(trace []interpreter.TraceEntry, citeStore *retrieval.Store) []string {
	if citeStore == nil {
		return nil
	}
	seen := map[string]bool{}
	var ids []string
	for _, e := range trace {
		for _, id := range e.Cite {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	var citations []string
	for _, snip := range citeStore.Lookup(ids, maxCitations) {
		citations = append(citations, fmt.Sprintf("%s: %s", snip.Source, snip.ShortQuote))
	}
	return citations
}

func buildProse(actions []ruleset.Action, ruleTrace, citations []string) string {
	var actionText string
	if len(actions) == 0 {
		actionText = "no actions recommended"
	} else {
		descs := make([]string, 0, len(actions))
		for _, a := range actions {
			descs = append(descs, formatAction(a))
		}
		actionText = strings.Join(descs, "; ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recommendation: %s.\n\nRule trace:\n", actionText)
	for _, line := range ruleTrace {
		fmt.Fprintf(&b, "  - %s\n", line)
	}
	if len(citations) > 0 {
		b.WriteString("\nCitations:\n")
		for _, c := range citations {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
