package explain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meddsl/meddsl/internal/explain"
	"github.com/meddsl/meddsl/internal/interpreter"
	"github.com/meddsl/meddsl/internal/retrieval"
	"github.com/meddsl/meddsl/internal/ruleset"
)

func TestExplain_BuildsRuleTraceAndProse(t *testing.T) {
	trace := []interpreter.TraceEntry{
		{NodeID: "start", Kind: "decision", Outcome: "true"},
		{NodeID: "refer", Kind: "action", Actions: []ruleset.Action{
			{"type": "suggest_referral", "specialty": "cardiology", "urgency": "urgent"},
		}, Cite: []string{"acc_2021_chest_pain"}},
	}
	actions := []ruleset.Action{
		{"type": "suggest_referral", "specialty": "cardiology", "urgency": "urgent"},
	}

	store := retrieval.NewStore()
	store.Add(retrieval.Snippet{ID: "acc_2021_chest_pain", Source: "ACC/AHA 2021", ShortQuote: "Immediate referral indicated."})

	ex := explain.Explain(actions, trace, store)

	require.Len(t, ex.RuleTrace, 2)
	assert.Contains(t, ex.RuleTrace[0], "condition was TRUE")
	assert.Contains(t, ex.RuleTrace[1], "refer to cardiology (urgent)")
	require.Len(t, ex.Citations, 1)
	assert.Contains(t, ex.Citations[0], "ACC/AHA 2021")
	assert.Contains(t, ex.Prose, "refer to cardiology (urgent)")
	assert.Contains(t, ex.Prose, "Citations:")
}

func TestExplain_NoActionsProducesNoRecommendationProse(t *testing.T) {
	trace := []interpreter.TraceEntry{
		{NodeID: "safety_stop", Kind: "safety_stop", Outcome: "missing_node"},
	}
	ex := explain.Explain(nil, trace, nil)

	assert.Contains(t, ex.Prose, "no actions recommended")
	assert.Contains(t, ex.RuleTrace[0], "SAFETY STOP: missing_node")
	assert.Empty(t, ex.Citations)
	assert.NotContains(t, ex.Prose, "Citations:")
}

func TestExplain_NilCiteStoreProducesNoCitations(t *testing.T) {
	trace := []interpreter.TraceEntry{
		{NodeID: "refer", Kind: "action", Cite: []string{"some_id"}},
	}
	ex := explain.Explain(nil, trace, nil)
	assert.Empty(t, ex.Citations)
}

func TestExplain_UnknownActionTypeFormatsGenerically(t *testing.T) {
	trace := []interpreter.TraceEntry{
		{NodeID: "n", Kind: "action", Actions: []ruleset.Action{{"type": "schedule_surgery", "urgency": "stat"}}},
	}
	ex := explain.Explain(nil, trace, nil)
	assert.Contains(t, ex.RuleTrace[0], "schedule_surgery")
}
