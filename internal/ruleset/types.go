// Package ruleset defines the RuleSet document model — metadata, decision
// and action nodes — together with pre-flight structural validation and
// the canonical content hash stamped on every trace entry.
package ruleset

import "fmt"

// NodeKind is the discriminant of a Node's kind field.
type NodeKind string

const (
	KindDecision NodeKind = "decision"
	KindAction   NodeKind = "action"
)

// Meta carries the descriptive metadata of a RuleSet.
type Meta struct {
	Profile string
	Version string
	Entry   string
}

// Action is an open record describing a clinical action to surface. "type"
// is the only field the engine interprets; everything else (e.g. a test
// code, a specialty, a follow-up interval) passes through untouched.
type Action map[string]any

// Type returns the action's "type" field, or "" if absent or non-string.
func (a Action) Type() string {
	t, _ := a["type"].(string)
	return t
}

// Recognized action types (spec-level vocabulary; UNKNOWN_ACTION_TYPE is an
// advisory lint finding, not a fatal error, for anything outside this set).
const (
	ActionSuggestReferral = "suggest_referral"
	ActionOrderTest       = "order_test"
	ActionSetFollowup     = "set_followup"
	ActionAbstain         = "abstain"
)

// KnownActionTypes is the recognized action type vocabulary.
var KnownActionTypes = map[string]bool{
	ActionSuggestReferral: true,
	ActionOrderTest:       true,
	ActionSetFollowup:     true,
	ActionAbstain:         true,
}

// Node is a single point in the rule graph: a decision (branches on a
// boolean condition) or an action (emits one or more Actions and falls
// through to Next).
type Node struct {
	ID        string
	Kind      NodeKind
	When      string   // decision only
	GotoTrue  string   // decision only, optional
	GotoFalse string   // decision only, optional
	Next      string   // decision (fallback) or action, optional
	Actions   []Action // action only
	Cite      []string
}

func (n Node) String() string {
	return fmt.Sprintf("Node{id:%s kind:%s}", n.ID, n.Kind)
}

// RuleSet is a fully parsed rule graph together with the raw document it
// was decoded from — the raw form is what canonicalization and hashing
// operate over, so the hash reflects exactly what was authored, including
// any fields the typed model does not interpret.
type RuleSet struct {
	Raw   map[string]any
	Meta  Meta
	Nodes []Node
}

// NodeByID returns the node with the given id, or false if none matches.
func (r RuleSet) NodeByID(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
