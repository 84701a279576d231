package ruleset

import "fmt"

// AuthoringError is a fatal, pre-flight structural defect: the RuleSet
// cannot be interpreted at all, independent of any particular case. These
// are raised before execution begins and never appear in a trace.
type AuthoringError struct {
	Msg string
}

func (e *AuthoringError) Error() string { return e.Msg }

func authoringErrorf(format string, args ...any) *AuthoringError {
	return &AuthoringError{Msg: fmt.Sprintf(format, args...)}
}

// ValidateStructure checks the invariants that must hold before a RuleSet
// can be executed at all: every node has an id and a valid kind, decision
// and action nodes carry exactly the fields their kind requires, and node
// ids are unique. It does not check meta.entry resolves to a real node —
// that is a runtime concern (interpreter.Execute emits a SafetyStop
// instead of failing fast), not an authoring one.
func ValidateStructure(rs RuleSet) error {
	if len(rs.Nodes) == 0 {
		return authoringErrorf("ruleset has no nodes")
	}

	seen := make(map[string]bool, len(rs.Nodes))
	for _, n := range rs.Nodes {
		if n.ID == "" {
			return authoringErrorf("node missing required 'id' field")
		}
		if seen[n.ID] {
			return authoringErrorf("duplicate node id: %s", n.ID)
		}
		seen[n.ID] = true

		switch n.Kind {
		case KindDecision:
			if n.When == "" {
				return authoringErrorf("decision node %s missing 'when' condition", n.ID)
			}
			if len(n.Actions) > 0 {
				return authoringErrorf("decision node %s should not have 'actions' field", n.ID)
			}
		case KindAction:
			if len(n.Actions) == 0 {
				return authoringErrorf("action node %s missing 'actions' field", n.ID)
			}
			if n.When != "" {
				return authoringErrorf("action node %s should not have 'when' field", n.ID)
			}
		default:
			return authoringErrorf("node %s has invalid type: %q", n.ID, string(n.Kind))
		}
	}
	return nil
}
