// Package linter performs static, advisory analysis of a RuleSet: it never
// raises and never blocks execution (spec.md layer 3). Every finding is a
// Diagnostic the caller can choose to act on.
package linter

import "github.com/meddsl/meddsl/internal/ruleset"

// Diagnostic tags. SCHEMA_ERROR findings carry the schema validator's
// detail as their Message.
const (
	TagDuplicateID       = "DUPLICATE_ID"
	TagMissingNode       = "MISSING_NODE"
	TagUnreachableNode   = "UNREACHABLE_NODE"
	TagCycleDetected     = "CYCLE_DETECTED"
	TagEmptyActions      = "EMPTY_ACTIONS"
	TagInvalidAction     = "INVALID_ACTION"
	TagUnknownActionType = "UNKNOWN_ACTION_TYPE"
	TagStructureError    = "STRUCTURE_ERROR"
	TagMissingField      = "MISSING_FIELD"
	TagSchemaError       = "SCHEMA_ERROR"
	TagInvalidVersion    = "INVALID_VERSION"
)

// Diagnostic is a single advisory finding.
type Diagnostic struct {
	Tag     string
	NodeID  string
	Message string
}

// Lint runs every static check against rs and returns all findings. It
// does not require rs to have passed ruleset.ValidateStructure first —
// linting a malformed RuleSet is exactly what authors need while editing.
func Lint(rs ruleset.RuleSet) []Diagnostic {
	var diags []Diagnostic
	diags = append(diags, lintStructure(rs)...)
	diags = append(diags, lintGraph(rs)...)
	diags = append(diags, lintActions(rs)...)
	diags = append(diags, lintVersion(rs)...)
	diags = append(diags, lintSchema(rs)...)
	return diags
}
