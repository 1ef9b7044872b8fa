package engine

import (
	"sort"

	"github.com/warriorguo/reteflow/types"
)

/**
 * topoOrder computes the evaluation order with Kahn's algorithm. The
 * queue is FIFO and seeded in node declaration order, so the same
 * workflow description always yields the same order. A short order
 * means the leftover nodes sit on a cycle: that is a CycleError and
 * the workflow must not run at all.
 */
func topoOrder(g *graph) ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for _, id := range g.declared {
		indegree[id] = len(g.byTarget[id])
	}

	queue := make([]string, 0, len(g.nodes))
	for _, id := range g.declared {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, conn := range g.bySource[id] {
			indegree[conn.TargetNodeID]--
			if indegree[conn.TargetNodeID] == 0 {
				queue = append(queue, conn.TargetNodeID)
			}
		}
	}

	if len(order) < len(g.declared) {
		leftover := make([]string, 0, len(g.declared)-len(order))
		for _, id := range g.declared {
			if indegree[id] > 0 {
				leftover = append(leftover, id)
			}
		}
		sort.Strings(leftover)
		return nil, types.NewCycleError(leftover)
	}
	return order, nil
}
