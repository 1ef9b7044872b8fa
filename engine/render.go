package engine

import (
	"fmt"
	"strings"
)

// Render returns the loaded graph as a DOT digraph, nodes shaped and
// colored by kind, edges labeled with their slot pair.
func (e *workflowEngine) Render() (string, error) {
	renderer := newGraphRenderer()
	return renderer.generateDOT(e.graph), nil
}

func newGraphRenderer() *graphRenderer {
	return &graphRenderer{sb: &strings.Builder{}}
}

type graphRenderer struct {
	sb *strings.Builder
}

func (r *graphRenderer) generateDOT(g *graph) string {
	r.write("digraph D {")
	for _, id := range g.declared {
		n := g.nodes[id]
		r.write("%s [label=%s shape=%s style=\"filled\" fillcolor=%s]",
			idString(id), quoteString(n.spec.DisplayLabel()),
			quoteString(kindShape(n.kind)), quoteString(kindColor(n.kind)))
	}
	for _, id := range g.declared {
		for _, conn := range g.bySource[id] {
			r.write("%s -> %s [label=%s]",
				idString(conn.SourceNodeID), idString(conn.TargetNodeID),
				quoteString(conn.SourceOutputKey+" > "+conn.TargetInputKey))
		}
	}
	r.write("}")
	return r.sb.String()
}

func (r *graphRenderer) write(format string, s ...any) {
	r.sb.WriteString(fmt.Sprintf(format+"\n", s...))
}

func kindShape(kind nodeKind) string {
	switch kind {
	case kindSource:
		return "cds"
	case kindRule:
		return "record"
	case kindAnd, kindOr:
		return "diamond"
	case kindAction:
		return "box"
	}
	return "ellipse"
}

func kindColor(kind nodeKind) string {
	switch kind {
	case kindSource:
		return "lightblue"
	case kindRule:
		return "white"
	case kindAnd, kindOr:
		return "lightgrey"
	case kindAction:
		return "orange"
	}
	return "white"
}

func quoteString(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

var idleChars = []string{" ", "'", "\"", "(", ")", "*", "&", "^", "%", "$", "#", "@", "!", "?", "<", ">", "[", "]", "{", "}", ".", "-"}

func idString(s string) string {
	for _, ch := range idleChars {
		s = strings.ReplaceAll(s, ch, "_")
	}
	return s
}
