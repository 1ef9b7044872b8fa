package engine

import (
	"strings"

	"github.com/juju/errors"
	"github.com/warriorguo/reteflow/types"
)

var (
	_ types.WorkflowEngine = &workflowEngine{}
)

/**
 * workflowEngine evaluates one loaded workflow. The graph, the order
 * and the active set are fixed at construction, every per row value
 * lives on the stack of ProcessRow. One engine value serves one run at
 * a time.
 */
type workflowEngine struct {
	graph  *graph
	order  []string
	active map[string]bool
	opts   *types.EngineOptions

	defaultDecision string
	warnedActions   map[string]bool
}

/**
 * New builds the engine for one workflow description: load the graph,
 * fix the evaluation order, resolve the dataset gating. A nil opts
 * runs with the defaults. A workflow carrying its own default decision
 * overrides the configured one.
 */
func New(wf *types.Workflow, opts *types.EngineOptions) (types.WorkflowEngine, error) {
	if opts == nil {
		opts = types.NewEngineOptions()
	}

	g, err := buildGraph(wf)
	if err != nil {
		return nil, errors.Trace(err)
	}
	order, err := topoOrder(g)
	if err != nil {
		return nil, errors.Trace(err)
	}

	e := &workflowEngine{
		graph:           g,
		order:           order,
		active:          activeNodes(g, opts.Dataset),
		opts:            opts,
		defaultDecision: opts.DefaultDecision,
		warnedActions:   make(map[string]bool),
	}
	if wf.DefaultDecision != "" {
		e.defaultDecision = wf.DefaultDecision
	}
	return e, nil
}

// Order returns a copy of the evaluation order fixed at construction.
func (e *workflowEngine) Order() []string {
	return append([]string(nil), e.order...)
}

func (e *workflowEngine) DecisionColumn() string {
	return e.opts.DecisionColumn
}

/**
 * activeNodes resolves the multi source gating: a node is skipped for
 * the whole run iff it descends from at least one Source and every
 * Source above it names another dataset. Nodes with no Source above
 * them always run, and an empty run dataset matches every Source.
 */
func activeNodes(g *graph, dataset string) map[string]bool {
	underSource := make(map[string]bool)
	underMatch := make(map[string]bool)

	for _, id := range g.declared {
		n := g.nodes[id]
		if n.kind != kindSource {
			continue
		}
		match := n.spec.Source == "" || dataset == "" || strings.EqualFold(n.spec.Source, dataset)
		for _, rid := range reachableFrom(g, id) {
			underSource[rid] = true
			if match {
				underMatch[rid] = true
			}
		}
	}

	active := make(map[string]bool, len(g.declared))
	for _, id := range g.declared {
		active[id] = !underSource[id] || underMatch[id]
	}
	return active
}

// reachableFrom returns id plus every node downstream of it.
func reachableFrom(g *graph, id string) []string {
	seen := map[string]bool{id: true}
	stack := []string{id}
	reach := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, conn := range g.bySource[cur] {
			if seen[conn.TargetNodeID] {
				continue
			}
			seen[conn.TargetNodeID] = true
			stack = append(stack, conn.TargetNodeID)
			reach = append(reach, conn.TargetNodeID)
		}
	}
	return reach
}
