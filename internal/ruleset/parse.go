package ruleset

import "fmt"

// FromRaw builds a typed RuleSet from a generically decoded document (as
// produced by gopkg.in/yaml.v3 or encoding/json unmarshaling into
// map[string]any). It performs no validation beyond what is needed to
// populate the typed fields — structural invariants are checked
// separately by ValidateStructure so that callers can distinguish "failed
// to even shape this into a RuleSet" from "shaped fine but violates an
// authoring invariant".
func FromRaw(raw map[string]any) (RuleSet, error) {
	rs := RuleSet{Raw: raw}

	if metaRaw, ok := raw["meta"].(map[string]any); ok {
		rs.Meta = Meta{
			Profile: str(metaRaw["profile"]),
			Version: str(metaRaw["version"]),
			Entry:   str(metaRaw["entry"]),
		}
	}

	nodesRaw, ok := raw["nodes"].([]any)
	if !ok {
		return rs, fmt.Errorf("ruleset: %q field missing or not a list", "nodes")
	}

	rs.Nodes = make([]Node, 0, len(nodesRaw))
	for i, nr := range nodesRaw {
		nm, ok := nr.(map[string]any)
		if !ok {
			return rs, fmt.Errorf("ruleset: node at index %d is not a mapping", i)
		}
		node := Node{
			ID:        str(nm["id"]),
			Kind:      NodeKind(str(nm["type"])),
			When:      str(nm["when"]),
			GotoTrue:  str(nm["goto_true"]),
			GotoFalse: str(nm["goto_false"]),
			Next:      str(nm["next"]),
			Cite:      strSlice(nm["cite"]),
		}
		if actionsRaw, ok := nm["actions"].([]any); ok {
			for _, ar := range actionsRaw {
				if am, ok := ar.(map[string]any); ok {
					node.Actions = append(node.Actions, Action(am))
				}
			}
		}
		rs.Nodes = append(rs.Nodes, node)
	}
	return rs, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
