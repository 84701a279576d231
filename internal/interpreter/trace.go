// Package interpreter executes a RuleSet graph against a case record,
// producing the ordered list of triggered actions and a full audit trace.
// Every failure mode below authoring-time structural validity is contained
// as a SafetyStop trace entry — execution always returns normally once the
// RuleSet itself has passed pre-flight validation.
package interpreter

import (
	"time"

	"github.com/meddsl/meddsl/internal/ruleset"
)

// TraceEntry records one step of graph traversal, or a terminal safety
// stop. It mirrors spec.md's TraceEntry document shape field-for-field.
type TraceEntry struct {
	NodeID    string           `json:"node"`
	Kind      string           `json:"type"`
	Outcome   string           `json:"outcome,omitempty"`
	Actions   []ruleset.Action `json:"actions,omitempty"`
	Cite      []string         `json:"cite,omitempty"`
	Profile   string           `json:"profile"`
	Version   string           `json:"version"`
	RuleHash  string           `json:"rule_hash"`
	Timestamp time.Time        `json:"timestamp"`
}

// Safety stop outcome tags, emitted with NodeID "safety_stop" and
// Kind "safety_stop".
const (
	OutcomeCycleDetected        = "cycle_detected"
	OutcomeMissingNode          = "missing_node"
	OutcomeMaxIterationsReached = "max_iterations_exceeded"
	// interpreter_error and unexpected_error are prefixes; the trailing
	// ": <message>" is appended by the interpreter when raised.
	OutcomeInterpreterErrorPrefix = "interpreter_error"
	OutcomeUnexpectedErrorPrefix  = "unexpected_error"
)

const safetyStopNodeID = "safety_stop"
const safetyStopKind = "safety_stop"
