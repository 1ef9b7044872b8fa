package engine

import (
	"fmt"

	"github.com/warriorguo/reteflow/expr"
	"github.com/warriorguo/reteflow/types"
	log "github.com/sirupsen/logrus"
)

const (
	decisionMissingColumn = types.DecisionErrorPrefix + "MISSING_COLUMN"
	decisionNodePanic     = types.DecisionErrorPrefix + "NODE_PANIC"
)

// signals holds one row's slot values, keyed by node id then slot name.
// It lives for exactly one pass and is discarded with the row.
type signals map[string]map[string]bool

func (e *workflowEngine) processOnce(row types.Row) string {
	sig := make(signals, len(e.order))

	for _, id := range e.order {
		if !e.active[id] {
			continue
		}
		n := e.graph.nodes[id]
		inputs := e.gatherInputs(id, sig)

		switch n.kind {
		case kindSource:
			sig[id] = slotFanout(n.spec, true)

		case kindRule:
			result, err := e.evaluateRule(n, row, inputs)
			if err != nil {
				if missing, ok := err.(*expr.MissingColumnError); ok && e.opts.StrictColumns {
					log.Warnf("rule %s (%s): column %q missing, row marked unprocessable",
						id, n.spec.DisplayLabel(), missing.Column)
					return decisionMissingColumn
				}
				log.Warnf("rule %s (%s) yields false: %v", id, n.spec.DisplayLabel(), err)
				result = false
			}
			outputs := slotFanout(n.spec, result)
			outputs["outputTrue"] = result
			outputs["outputFrue"] = !result
			sig[id] = outputs

		case kindAnd:
			result := true
			for i := 0; i < n.spec.NumInputs; i++ {
				if !inputs[inputSlot(i)] {
					result = false
					break
				}
			}
			sig[id] = map[string]bool{"output": result}

		case kindOr:
			result := false
			for i := 0; i < n.spec.NumInputs; i++ {
				if inputs[inputSlot(i)] {
					result = true
					break
				}
			}
			sig[id] = map[string]bool{"output": result}

		case kindAction:
			if !anyTrue(inputs) {
				continue
			}
			label := n.spec.DisplayLabel()
			if label == types.DecisionDiscard {
				return types.DecisionDiscard
			}
			e.warnUnknownAction(label)
		}
	}
	return e.defaultDecision
}

/**
 * gatherInputs resolves the incoming connections of one node against
 * the signals produced so far. A slot fed by several connections keeps
 * the last declared one, a slot fed by nothing reads false.
 */
func (e *workflowEngine) gatherInputs(id string, sig signals) map[string]bool {
	conns := e.graph.byTarget[id]
	if len(conns) == 0 {
		return nil
	}
	inputs := make(map[string]bool, len(conns))
	for _, conn := range conns {
		value := false
		if outputs, exists := sig[conn.SourceNodeID]; exists {
			value = outputs[conn.SourceOutputKey]
		}
		inputs[conn.TargetInputKey] = value
	}
	return inputs
}

func (e *workflowEngine) evaluateRule(n *node, row types.Row, inputs map[string]bool) (bool, error) {
	if e.isDerivedRule(n) {
		return inputs["input0"], nil
	}
	if n.parseErr != nil {
		// already warned at load time
		return false, nil
	}
	scope, err := n.program.BindRow(row, n.spec.VariableType)
	if err != nil {
		return false, err
	}
	result, err := n.program.EvalBool(scope)
	if err != nil {
		return false, err
	}
	return result, nil
}

/**
 * isDerivedRule tells the two Rule sub kinds apart: a rule that
 * declares inputs and is fed on input0 forwards that boolean, every
 * other rule evaluates its expression against the row. Builder rules
 * declare numInputs 0, so wiring a Source in front of a rule keeps the
 * expression active.
 */
func (e *workflowEngine) isDerivedRule(n *node) bool {
	if n.spec.NumInputs == 0 {
		return false
	}
	for _, conn := range e.graph.byTarget[n.spec.ID] {
		if conn.TargetInputKey == "input0" {
			return true
		}
	}
	return false
}

func (e *workflowEngine) warnUnknownAction(label string) {
	if e.warnedActions[label] {
		return
	}
	e.warnedActions[label] = true
	log.Warnf("no implementation for action %q, signal ignored", label)
}

// slotFanout spreads value over a node's declared output slots.
func slotFanout(spec *types.NodeSpec, value bool) map[string]bool {
	outputs := make(map[string]bool, spec.NumOutputs+2)
	if spec.NumOutputs == 0 {
		outputs["output"] = value
		return outputs
	}
	for i := 0; i < spec.NumOutputs; i++ {
		outputs[outputSlot(i)] = value
	}
	return outputs
}

func inputSlot(i int) string {
	return fmt.Sprintf("input%d", i)
}

func outputSlot(i int) string {
	return fmt.Sprintf("output%d", i)
}

func anyTrue(inputs map[string]bool) bool {
	for _, v := range inputs {
		if v {
			return true
		}
	}
	return false
}
