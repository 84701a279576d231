package linter

import "github.com/meddsl/meddsl/internal/ruleset"

// lintActions checks every action node's payload: present, non-empty, each
// entry carries a string "type", and flags (without blocking) any type
// outside the recognized vocabulary. A node's typed Actions field can't
// tell "actions" being absent from "actions": [] — both decode to a nil
// slice — so this distinguishes the two against rs.Raw, matching spec.md's
// separate MISSING_FIELD and EMPTY_ACTIONS tags.
func lintActions(rs ruleset.RuleSet) []Diagnostic {
	rawActions := rawNodeActions(rs)

	var diags []Diagnostic
	for i, n := range rs.Nodes {
		if n.Kind != ruleset.KindAction {
			continue
		}
		if len(n.Actions) == 0 {
			if i < len(rawActions) && !rawActions[i] {
				diags = append(diags, Diagnostic{Tag: TagMissingField, NodeID: n.ID, Message: "action node missing 'actions' field"})
			} else {
				diags = append(diags, Diagnostic{Tag: TagEmptyActions, NodeID: n.ID, Message: "action node has no actions"})
			}
			continue
		}
		for _, a := range n.Actions {
			t, ok := a["type"].(string)
			if !ok || t == "" {
				diags = append(diags, Diagnostic{Tag: TagInvalidAction, NodeID: n.ID, Message: "action entry missing required 'type' field"})
				continue
			}
			if !ruleset.KnownActionTypes[t] {
				diags = append(diags, Diagnostic{Tag: TagUnknownActionType, NodeID: n.ID, Message: "unrecognized action type: " + t})
			}
		}
	}
	return diags
}

// rawNodeActions reports, per node index in rs.Raw["nodes"], whether that
// node's raw map has an "actions" key at all (present, even if its value
// isn't a list or is empty). FromRaw builds rs.Nodes from the same slice
// in the same order, so indices line up.
func rawNodeActions(rs ruleset.RuleSet) []bool {
	nodesRaw, ok := rs.Raw["nodes"].([]any)
	if !ok {
		return nil
	}
	present := make([]bool, len(nodesRaw))
	for i, nr := range nodesRaw {
		if nm, ok := nr.(map[string]any); ok {
			_, present[i] = nm["actions"]
		}
	}
	return present
}

// lintVersion reports a non-parsing meta.version as an advisory finding;
// spec.md leaves the field format-free, so this never blocks anything.
func lintVersion(rs ruleset.RuleSet) []Diagnostic {
	if err := ruleset.ValidateVersion(rs.Meta); err != nil {
		return []Diagnostic{{Tag: TagInvalidVersion, Message: err.Error()}}
	}
	return nil
}
