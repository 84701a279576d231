package linter

import "github.com/meddsl/meddsl/internal/ruleset"

// outgoing returns the node ids a node can transition to, deduplicated,
// skipping empty/unset targets.
func outgoing(n ruleset.Node) []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	add(n.GotoTrue)
	add(n.GotoFalse)
	add(n.Next)
	return out
}

// lintGraph finds dangling edges, unreachable nodes, and static cycles in
// the rule graph.
func lintGraph(rs ruleset.RuleSet) []Diagnostic {
	var diags []Diagnostic

	byID := make(map[string]ruleset.Node, len(rs.Nodes))
	for _, n := range rs.Nodes {
		byID[n.ID] = n
	}

	if rs.Meta.Entry != "" {
		if _, ok := byID[rs.Meta.Entry]; !ok {
			diags = append(diags, Diagnostic{Tag: TagMissingNode, Message: "meta.entry references unknown node: " + rs.Meta.Entry})
		}
	}

	for _, n := range rs.Nodes {
		for _, target := range outgoing(n) {
			if _, ok := byID[target]; !ok {
				diags = append(diags, Diagnostic{Tag: TagMissingNode, NodeID: n.ID, Message: "references unknown node: " + target})
			}
		}
	}

	diags = append(diags, lintUnreachable(rs, byID)...)
	diags = append(diags, lintCycles(rs, byID)...)
	return diags
}

func entryID(rs ruleset.RuleSet) string {
	if rs.Meta.Entry != "" {
		return rs.Meta.Entry
	}
	if len(rs.Nodes) > 0 {
		return rs.Nodes[0].ID
	}
	return ""
}

func lintUnreachable(rs ruleset.RuleSet, byID map[string]ruleset.Node) []Diagnostic {
	start := entryID(rs)
	reachable := map[string]bool{}
	if start != "" {
		if _, ok := byID[start]; ok {
			var stack []string
			stack = append(stack, start)
			for len(stack) > 0 {
				id := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if reachable[id] {
					continue
				}
				reachable[id] = true
				n, ok := byID[id]
				if !ok {
					continue
				}
				for _, target := range outgoing(n) {
					if !reachable[target] {
						stack = append(stack, target)
					}
				}
			}
		}
	}

	var diags []Diagnostic
	for _, n := range rs.Nodes {
		if n.ID != "" && !reachable[n.ID] {
			diags = append(diags, Diagnostic{Tag: TagUnreachableNode, NodeID: n.ID, Message: "node is not reachable from meta.entry"})
		}
	}
	return diags
}

// lintCycles performs a static DFS cycle detection over the full graph,
// independent of any particular case's decision outcomes — this complements
// interpreter.Execute's runtime cycle SafetyStop, which only observes the
// path a specific case actually traverses.
func lintCycles(rs ruleset.RuleSet, byID map[string]ruleset.Node) []Diagnostic {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(rs.Nodes))
	cyclic := map[string]bool{}
	var path []string

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		path = append(path, id)

		n, ok := byID[id]
		if ok {
			for _, target := range outgoing(n) {
				if _, ok := byID[target]; !ok {
					continue
				}
				switch color[target] {
				case gray:
					// Back edge: mark every node on the path from target
					// to here as participating in the cycle.
					for i := len(path) - 1; i >= 0; i-- {
						cyclic[path[i]] = true
						if path[i] == target {
							break
						}
					}
				case white:
					visit(target)
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black
	}

	for _, n := range rs.Nodes {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}

	var diags []Diagnostic
	for _, n := range rs.Nodes {
		if cyclic[n.ID] {
			diags = append(diags, Diagnostic{Tag: TagCycleDetected, NodeID: n.ID, Message: "node participates in a cycle"})
		}
	}
	return diags
}
