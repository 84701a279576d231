package linter

import "github.com/meddsl/meddsl/internal/ruleset"

// lintStructure restates ruleset.ValidateStructure's checks as non-fatal
// diagnostics, so an author editing a RuleSet sees every problem at once
// instead of stopping at the first one execute() would reject.
func lintStructure(rs ruleset.RuleSet) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool, len(rs.Nodes))

	for _, n := range rs.Nodes {
		if n.ID == "" {
			diags = append(diags, Diagnostic{Tag: TagStructureError, Message: "node missing required 'id' field"})
			continue
		}
		if seen[n.ID] {
			diags = append(diags, Diagnostic{Tag: TagDuplicateID, NodeID: n.ID, Message: "duplicate node id"})
		}
		seen[n.ID] = true

		switch n.Kind {
		case ruleset.KindDecision:
			if n.When == "" {
				diags = append(diags, Diagnostic{Tag: TagMissingField, NodeID: n.ID, Message: "decision node missing 'when' condition"})
			}
			if len(n.Actions) > 0 {
				diags = append(diags, Diagnostic{Tag: TagStructureError, NodeID: n.ID, Message: "decision node should not have 'actions' field"})
			}
		case ruleset.KindAction:
			if n.When != "" {
				diags = append(diags, Diagnostic{Tag: TagStructureError, NodeID: n.ID, Message: "action node should not have 'when' field"})
			}
		default:
			diags = append(diags, Diagnostic{Tag: TagStructureError, NodeID: n.ID, Message: "invalid node type: " + string(n.Kind)})
		}
	}
	return diags
}
