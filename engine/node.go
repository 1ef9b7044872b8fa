package engine

import (
	"strings"

	"github.com/warriorguo/reteflow/expr"
	"github.com/warriorguo/reteflow/types"
)

type nodeKind int

const (
	kindSource nodeKind = 1
	kindRule   nodeKind = 2
	kindAnd    nodeKind = 3
	kindOr     nodeKind = 4
	kindAction nodeKind = 5
)

// kindOf maps a wire node type onto its kind, case insensitively.
func kindOf(nodeType string) (nodeKind, bool) {
	switch {
	case strings.EqualFold(nodeType, types.NodeSource):
		return kindSource, true
	case strings.EqualFold(nodeType, types.NodeRule):
		return kindRule, true
	case strings.EqualFold(nodeType, types.NodeAnd):
		return kindAnd, true
	case strings.EqualFold(nodeType, types.NodeOr):
		return kindOr, true
	case strings.EqualFold(nodeType, types.NodeAction):
		return kindAction, true
	}
	return 0, false
}

/**
 * node is one loaded workflow vertex. Rule nodes carry their program,
 * compiled once at load time. A rule that does not compile keeps the
 * parse error instead and evaluates false on every row.
 */
type node struct {
	spec *types.NodeSpec
	kind nodeKind

	program  *expr.Program
	parseErr error
}
