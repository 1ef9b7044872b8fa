package engine_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warriorguo/reteflow/engine"
	"github.com/warriorguo/reteflow/types"
)

func ruleNode(id, codeLine, variableType string) types.NodeSpec {
	return types.NodeSpec{
		ID: id, Type: types.NodeRule, Label: codeLine,
		NumOutputs: 1, CodeLine: codeLine, VariableType: variableType,
	}
}

func gateNode(id, gateType string, numInputs int) types.NodeSpec {
	return types.NodeSpec{ID: id, Type: gateType, NumInputs: numInputs, NumOutputs: 1}
}

func actionNode(id, label string) types.NodeSpec {
	return types.NodeSpec{ID: id, Type: types.NodeAction, Label: label, NumInputs: 1}
}

func sourceNode(id, dataset string) types.NodeSpec {
	return types.NodeSpec{ID: id, Type: types.NodeSource, Label: "Pill Data", NumOutputs: 1, Source: dataset}
}

func conn(id, from, fromKey, to, toKey string) types.ConnectionSpec {
	return types.ConnectionSpec{
		ID: id, SourceNodeID: from, SourceOutputKey: fromKey,
		TargetNodeID: to, TargetInputKey: toKey,
	}
}

func TestWeightRuleScenario(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			sourceNode("src", ""),
			ruleNode("rule_weight", "weight > 0.8", "float"),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "src", "output0", "rule_weight", "input0"),
			conn("c2", "rule_weight", "output0", "discard", "input0"),
		},
	}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)

	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(types.Row{"weight": "0.9"}))
	assert.Equal(t, types.DecisionAccept, eng.ProcessRow(types.Row{"weight": "0.5"}))
	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(types.Row{"weight": 0.81}))
}

func TestOrGateScenario(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_color", "color == 'blue'", "str"),
			ruleNode("rule_cracked", "is_cracked == True", "bool"),
			gateNode("any_defect", types.NodeOr, 2),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_color", "output0", "any_defect", "input0"),
			conn("c2", "rule_cracked", "output0", "any_defect", "input1"),
			conn("c3", "any_defect", "output", "discard", "input0"),
		},
	}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)

	// color rule is false, cracked rule true, OR carries the discard
	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(types.Row{"color": "red", "is_cracked": true}))
	assert.Equal(t, types.DecisionAccept, eng.ProcessRow(types.Row{"color": "red", "is_cracked": false}))
	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(types.Row{"color": "blue", "is_cracked": false}))
}

func TestCycleError(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			gateNode("node_b", types.NodeAnd, 1),
			gateNode("node_a", types.NodeAnd, 1),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "node_a", "output", "node_b", "input0"),
			conn("c2", "node_b", "output", "node_a", "input0"),
		},
	}

	_, err := engine.New(wf, nil)
	assert.NotNil(t, err)

	ce, ok := types.AsCycleError(err)
	assert.True(t, ok)
	assert.Equal(t, []string{"node_a", "node_b"}, ce.Nodes)
	fmt.Printf("cycle: %v\n", err)
}

func TestLoadErrors(t *testing.T) {
	_, err := engine.New(&types.Workflow{}, nil)
	assert.True(t, types.IsLoadError(err))

	_, err = engine.New(nil, nil)
	assert.True(t, types.IsLoadError(err))

	_, err = engine.New(&types.Workflow{
		Nodes: []types.NodeSpec{
			gateNode("same", types.NodeAnd, 0),
			gateNode("same", types.NodeOr, 0),
		},
	}, nil)
	assert.True(t, types.IsLoadError(err))

	_, err = engine.New(&types.Workflow{
		Nodes: []types.NodeSpec{{ID: "n1", Type: "Teleport"}},
	}, nil)
	assert.True(t, types.IsLoadError(err))
}

func TestDanglingConnectionSkipped(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_weight", "weight > 0.8", "float"),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_weight", "output0", "discard", "input0"),
			conn("c2", "ghost", "output0", "discard", "input0"),
			conn("c3", "rule_weight", "output0", "phantom", "input0"),
		},
	}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)
	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(types.Row{"weight": 0.9}))
}

func TestGateArity(t *testing.T) {
	// an AND with no declared inputs is vacuously true
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			gateNode("gate", types.NodeAnd, 0),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "gate", "output", "discard", "input0"),
		},
	}
	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)
	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(types.Row{}))

	// an OR with no declared inputs stays false
	wf.Nodes[0] = gateNode("gate", types.NodeOr, 0)
	eng, err = engine.New(wf, nil)
	assert.Nil(t, err)
	assert.Equal(t, types.DecisionAccept, eng.ProcessRow(types.Row{}))

	// a declared but unconnected AND input reads false
	wf = &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_true", "1 == 1", "float"),
			gateNode("gate", types.NodeAnd, 2),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_true", "output0", "gate", "input0"),
			conn("c2", "gate", "output", "discard", "input0"),
		},
	}
	eng, err = engine.New(wf, nil)
	assert.Nil(t, err)
	assert.Equal(t, types.DecisionAccept, eng.ProcessRow(types.Row{}))
}

func TestDerivedRule(t *testing.T) {
	// the derived rule declares an input and is fed on input0: it must
	// forward the upstream boolean and leave its own expression alone
	derived := ruleNode("rule_forward", "True", "str")
	derived.NumInputs = 1

	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_weight", "weight > 0.8", "float"),
			derived,
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_weight", "output0", "rule_forward", "input0"),
			conn("c2", "rule_forward", "output0", "discard", "input0"),
		},
	}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)
	assert.Equal(t, types.DecisionAccept, eng.ProcessRow(types.Row{"weight": 0.5}))
	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(types.Row{"weight": 0.9}))
}

func TestTwoBranchSlots(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_cracked", "is_cracked == True", "bool"),
			actionNode("discard", "DISCARD"),
			actionNode("flag", "FLAG_FOR_REVIEW"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_cracked", "outputTrue", "discard", "input0"),
			conn("c2", "rule_cracked", "outputFrue", "flag", "input0"),
		},
	}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)

	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(types.Row{"is_cracked": true}))
	// the false branch only reaches the unknown action, which warns and
	// leaves the decision alone
	assert.Equal(t, types.DecisionAccept, eng.ProcessRow(types.Row{"is_cracked": false}))
}

func TestSourceGating(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			sourceNode("src_a", "line_a"),
			ruleNode("rule_cracked", "is_cracked == True", "bool"),
			actionNode("discard_a", "DISCARD"),
			sourceNode("src_b", "line_b"),
			ruleNode("rule_weight", "weight > 0", "float"),
			actionNode("discard_b", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "src_a", "output0", "rule_cracked", "input0"),
			conn("c2", "rule_cracked", "output0", "discard_a", "input0"),
			conn("c3", "src_b", "output0", "rule_weight", "input0"),
			conn("c4", "rule_weight", "output0", "discard_b", "input0"),
		},
	}
	row := types.Row{"is_cracked": true, "weight": 0.0}

	eng, err := engine.New(wf, types.NewEngineOptions())
	assert.Nil(t, err)
	// no run dataset: both subgraphs run, the cracked rule discards
	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(row))

	opts := types.NewEngineOptions()
	opts.Dataset = "line_b"
	eng, err = engine.New(wf, opts)
	assert.Nil(t, err)
	// line_a subgraph is inactive, weight > 0 fails, the row survives
	assert.Equal(t, types.DecisionAccept, eng.ProcessRow(row))

	opts = types.NewEngineOptions()
	opts.Dataset = "line_a"
	eng, err = engine.New(wf, opts)
	assert.Nil(t, err)
	assert.Equal(t, types.DecisionDiscard, eng.ProcessRow(row))
}

func TestMissingColumnPolicies(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_mass", "mass > 10", "float"),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_mass", "output0", "discard", "input0"),
		},
	}
	row := types.Row{"weight": 0.5}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)
	assert.Equal(t, types.DecisionAccept, eng.ProcessRow(row))

	opts := types.NewEngineOptions()
	opts.StrictColumns = true
	eng, err = engine.New(wf, opts)
	assert.Nil(t, err)
	assert.Equal(t, "ERROR_MISSING_COLUMN", eng.ProcessRow(row))
}

func TestProcessRowsStats(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_weight", "weight > 0.8", "float"),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_weight", "output0", "discard", "input0"),
		},
	}

	opts := types.NewEngineOptions()
	opts.StrictColumns = true
	eng, err := engine.New(wf, opts)
	assert.Nil(t, err)

	rows := []types.Row{
		{"pill_id": "P001", "weight": 0.9},
		{"pill_id": "P002", "weight": 0.5},
		{"pill_id": "P003"},
		{"pill_id": "P004", "weight": 0.95},
	}
	result := eng.ProcessRows(rows)

	assert.Equal(t, 4, result.Stats.TotalProcessed)
	assert.Equal(t, 1, result.Stats.Accepted)
	assert.Equal(t, 2, result.Stats.Discarded)
	assert.Equal(t, 1, result.Stats.Errors)
	assert.Equal(t, 2, result.Stats.Decisions[types.DecisionDiscard])
	assert.Equal(t, 1, result.Stats.Decisions["ERROR_MISSING_COLUMN"])
	assert.GreaterOrEqual(t, result.Stats.TimeTaken, 0.0)

	// augmented rows carry the decision, input rows stay untouched
	assert.Len(t, result.Rows, 4)
	decision, exists := result.Rows[0].Get("workflow_decision")
	assert.True(t, exists)
	assert.Equal(t, types.DecisionDiscard, decision)
	_, exists = rows[0].Get("workflow_decision")
	assert.False(t, exists)
}

func TestWorkflowDefaultDecision(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_weight", "weight > 0.8", "float"),
		},
		DefaultDecision: "HOLD",
	}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)
	assert.Equal(t, "HOLD", eng.ProcessRow(types.Row{"weight": 0.5}))
}

func TestDeterminism(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			ruleNode("rule_weight", "weight > 0.8", "float"),
			ruleNode("rule_color", "color == 'blue'", "str"),
			gateNode("any_defect", types.NodeOr, 2),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_weight", "output0", "any_defect", "input0"),
			conn("c2", "rule_color", "output0", "any_defect", "input1"),
			conn("c3", "any_defect", "output", "discard", "input0"),
		},
	}
	rows := []types.Row{
		{"weight": 0.9, "color": "white"},
		{"weight": 0.5, "color": "blue"},
		{"weight": 0.5, "color": "white"},
	}

	first, err := engine.New(wf, nil)
	assert.Nil(t, err)
	second, err := engine.New(wf, nil)
	assert.Nil(t, err)

	assert.Equal(t, first.Order(), second.Order())

	resultA := first.ProcessRows(rows)
	resultB := second.ProcessRows(rows)
	assert.Equal(t, resultA.Stats.Decisions, resultB.Stats.Decisions)
	for i := range resultA.Rows {
		a, _ := resultA.Rows[i].Get("workflow_decision")
		b, _ := resultB.Rows[i].Get("workflow_decision")
		assert.Equal(t, a, b)
	}
}

func TestTopologicalOrder(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			actionNode("discard", "DISCARD"),
			gateNode("any_defect", types.NodeOr, 1),
			ruleNode("rule_weight", "weight > 0.8", "float"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "rule_weight", "output0", "any_defect", "input0"),
			conn("c2", "any_defect", "output", "discard", "input0"),
		},
	}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)

	order := eng.Order()
	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	for _, c := range wf.Connections {
		assert.Less(t, position[c.SourceNodeID], position[c.TargetNodeID])
	}
}

func TestRendering(t *testing.T) {
	wf := &types.Workflow{
		Nodes: []types.NodeSpec{
			sourceNode("src", "pill_data"),
			ruleNode("rule_weight", "weight > 0.8", "float"),
			actionNode("discard", "DISCARD"),
		},
		Connections: []types.ConnectionSpec{
			conn("c1", "src", "output0", "rule_weight", "input0"),
			conn("c2", "rule_weight", "output0", "discard", "input0"),
		},
	}

	eng, err := engine.New(wf, nil)
	assert.Nil(t, err)

	s, err := eng.Render()
	assert.Nil(t, err)
	assert.Contains(t, s, "digraph D {")
	for _, spec := range wf.Nodes {
		assert.Contains(t, s, spec.ID)
	}
	assert.Contains(t, s, "src -> rule_weight")
	fmt.Printf("DOT:\n %s\n", s)
}
