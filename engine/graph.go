package engine

import (
	"github.com/warriorguo/reteflow/expr"
	"github.com/warriorguo/reteflow/types"
	log "github.com/sirupsen/logrus"
)

/**
 * graph is the loaded workflow: the node arena keyed by id, the ids in
 * declaration order, and the two connection indexes. Built once by
 * buildGraph, never mutated afterwards.
 */
type graph struct {
	nodes    map[string]*node
	declared []string

	bySource map[string][]*types.ConnectionSpec
	byTarget map[string][]*types.ConnectionSpec
}

func buildGraph(wf *types.Workflow) (*graph, error) {
	if wf == nil || len(wf.Nodes) == 0 {
		return nil, types.NewLoadErrorf("workflow has no nodes")
	}

	g := &graph{
		nodes:    make(map[string]*node, len(wf.Nodes)),
		declared: make([]string, 0, len(wf.Nodes)),
		bySource: make(map[string][]*types.ConnectionSpec),
		byTarget: make(map[string][]*types.ConnectionSpec),
	}

	for i := range wf.Nodes {
		spec := &wf.Nodes[i]
		if spec.ID == "" {
			return nil, types.NewLoadErrorf("node #%d has no id", i)
		}
		kind, known := kindOf(spec.Type)
		if !known {
			return nil, types.NewLoadErrorf("node %s: unknown type %q", spec.ID, spec.Type)
		}
		if _, exists := g.nodes[spec.ID]; exists {
			return nil, types.NewLoadErrorf("duplicate node id %s", spec.ID)
		}

		n := &node{spec: spec, kind: kind}
		if kind == kindRule {
			program, err := expr.Compile(spec.CodeLine)
			if err != nil {
				// the rule stays loaded and yields false on every row
				log.Warnf("rule %s (%s) does not compile: %v", spec.ID, spec.DisplayLabel(), err)
				n.parseErr = err
			} else {
				n.program = program
			}
		}
		g.nodes[spec.ID] = n
		g.declared = append(g.declared, spec.ID)
	}

	// a connection naming an unknown node is dropped, not fatal
	for i := range wf.Connections {
		conn := &wf.Connections[i]
		if _, exists := g.nodes[conn.SourceNodeID]; !exists {
			log.Warnf("skipping connection %s: source node %s not found", conn.ID, conn.SourceNodeID)
			continue
		}
		if _, exists := g.nodes[conn.TargetNodeID]; !exists {
			log.Warnf("skipping connection %s: target node %s not found", conn.ID, conn.TargetNodeID)
			continue
		}
		g.bySource[conn.SourceNodeID] = append(g.bySource[conn.SourceNodeID], conn)
		g.byTarget[conn.TargetNodeID] = append(g.byTarget[conn.TargetNodeID], conn)
	}
	return g, nil
}
