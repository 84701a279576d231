package interpreter

import (
	"fmt"
	"strings"
	"time"

	"github.com/meddsl/meddsl/internal/expr"
	"github.com/meddsl/meddsl/internal/ruleset"
	"github.com/meddsl/meddsl/internal/value"
)

func now() time.Time { return time.Now().UTC() }

// MaxIterations bounds graph traversal. The cap fires only when a 101st
// transition would occur — nodes 1 through 100 always execute normally,
// and only an attempt to move to a 101st node is treated as a runaway
// graph. This resolves spec.md's off-by-one ambiguity in the direction
// spec.md's own design notes recommend.
const MaxIterations = 100

// Execute runs a RuleSet against a case record. Returns an error only for
// fatal authoring defects (ruleset.AuthoringError) discovered during
// pre-flight validation — every other failure mode is contained as a
// SafetyStop trace entry and Execute returns normally.
func Execute(rs ruleset.RuleSet, caseRecord map[string]value.Value) ([]ruleset.Action, []TraceEntry, error) {
	if err := ruleset.ValidateStructure(rs); err != nil {
		return nil, nil, err
	}

	ruleHash, err := ruleset.Hash(rs.Raw)
	if err != nil {
		return nil, nil, fmt.Errorf("interpreter: failed to hash ruleset: %w", err)
	}

	r := &run{
		rs:       rs,
		caseRec:  caseRecord,
		profile:  rs.Meta.Profile,
		version:  rs.Meta.Version,
		ruleHash: ruleHash,
		visited:  make(map[string]bool),
	}
	r.exec()

	outcomeTag := "completed"
	if len(r.trace) > 0 && r.trace[len(r.trace)-1].Kind == safetyStopKind {
		outcomeTag = "safety_stop"
	}
	executionsTotal.WithLabelValues(outcomeTag).Inc()
	nodesVisitedHistogram.Observe(float64(len(r.visited)))

	return r.actions, r.trace, nil
}

type run struct {
	rs       ruleset.RuleSet
	caseRec  map[string]value.Value
	profile  string
	version  string
	ruleHash string

	visited      map[string]bool
	iterations   int
	actions      []ruleset.Action
	trace        []TraceEntry
}

func (r *run) exec() {
	current, ok := r.entryNode()
	if !ok {
		r.stop(OutcomeMissingNode)
		return
	}

	for {
		if current == nil {
			return
		}
		if r.iterations >= MaxIterations {
			r.stop(OutcomeMaxIterationsReached)
			return
		}
		if r.visited[current.ID] {
			r.stop(OutcomeCycleDetected)
			return
		}
		r.visited[current.ID] = true
		r.iterations++

		next, done := r.step(*current)
		if done {
			return
		}
		current = next
	}
}

// entryNode resolves meta.entry, or falls back to the first authored node
// when entry is unset. A named but non-existent entry is a runtime
// SafetyStop(missing_node), not a fatal authoring error.
func (r *run) entryNode() (*ruleset.Node, bool) {
	if r.rs.Meta.Entry == "" {
		if len(r.rs.Nodes) == 0 {
			return nil, false
		}
		n := r.rs.Nodes[0]
		return &n, true
	}
	n, ok := r.rs.NodeByID(r.rs.Meta.Entry)
	if !ok {
		return nil, false
	}
	return &n, true
}

// step executes a single node, appending to the trace, and returns the
// next node to visit (nil if execution completed normally) along with
// whether the run is finished (either completion or a terminal safety stop).
func (r *run) step(node ruleset.Node) (next *ruleset.Node, done bool) {
	defer func() {
		if p := recover(); p != nil {
			r.stop(fmt.Sprintf("%s: %v", OutcomeUnexpectedErrorPrefix, p))
			next, done = nil, true
		}
	}()

	switch node.Kind {
	case ruleset.KindDecision:
		return r.stepDecision(node)
	case ruleset.KindAction:
		return r.stepAction(node)
	default:
		r.stop(fmt.Sprintf("%s: node %s has unrecognized kind %q", OutcomeInterpreterErrorPrefix, node.ID, string(node.Kind)))
		return nil, true
	}
}

func (r *run) stepDecision(node ruleset.Node) (*ruleset.Node, bool) {
	ast, err := expr.Parse(node.When)
	if err != nil {
		r.stop(fmt.Sprintf("%s: failed to parse condition for node %s: %s", OutcomeInterpreterErrorPrefix, node.ID, err))
		return nil, true
	}
	outcome, err := expr.Eval(ast, r.caseRec)
	if err != nil {
		r.stop(fmt.Sprintf("%s: %s", OutcomeInterpreterErrorPrefix, err))
		return nil, true
	}

	r.trace = append(r.trace, r.entry(node, outcomeStr(outcome), nil))

	var nextID string
	switch {
	case outcome && node.GotoTrue != "":
		nextID = node.GotoTrue
	case !outcome && node.GotoFalse != "":
		nextID = node.GotoFalse
	default:
		nextID = node.Next
	}
	if nextID == "" {
		return nil, true
	}
	n, ok := r.rs.NodeByID(nextID)
	if !ok {
		r.stop(OutcomeMissingNode)
		return nil, true
	}
	return &n, false
}

func (r *run) stepAction(node ruleset.Node) (*ruleset.Node, bool) {
	r.actions = append(r.actions, node.Actions...)
	r.trace = append(r.trace, r.entry(node, "", node.Actions))

	if node.Next == "" {
		return nil, true
	}
	n, ok := r.rs.NodeByID(node.Next)
	if !ok {
		r.stop(OutcomeMissingNode)
		return nil, true
	}
	return &n, false
}

func (r *run) entry(node ruleset.Node, outcome string, actions []ruleset.Action) TraceEntry {
	return TraceEntry{
		NodeID:    node.ID,
		Kind:      string(node.Kind),
		Outcome:   outcome,
		Actions:   actions,
		Cite:      node.Cite,
		Profile:   r.profile,
		Version:   r.version,
		RuleHash:  r.ruleHash,
		Timestamp: now(),
	}
}

func (r *run) stop(outcome string) {
	tag, _, _ := strings.Cut(outcome, ":")
	safetyStopsTotal.WithLabelValues(tag).Inc()
	r.trace = append(r.trace, TraceEntry{
		NodeID:    safetyStopNodeID,
		Kind:      safetyStopKind,
		Outcome:   outcome,
		Profile:   r.profile,
		Version:   r.version,
		RuleHash:  r.ruleHash,
		Timestamp: now(),
	})
}

func outcomeStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
