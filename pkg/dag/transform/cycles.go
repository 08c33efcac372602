package transform

import "github.com/matzehuels/erchart/pkg/dag"

// BreakCycles removes back edges found by a depth-first traversal and returns
// the IDs of the removed edges in discovery order.
//
// The traversal starts from source nodes in insertion order and then from any
// node still unvisited (nodes that only sit on cycles), also in insertion
// order. Out-edges are followed in insertion order, so the same graph always
// loses the same edges. Self-loops are always removed.
func BreakCycles(g *dag.DAG) []string {
	const (
		white = iota
		gray
		black
	)

	out := make(map[string][]dag.Edge, g.NodeCount())
	for _, e := range g.Edges() {
		out[e.From] = append(out[e.From], e)
	}

	color := make(map[string]int, g.NodeCount())
	var backEdges []string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, e := range out[node] {
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				backEdges = append(backEdges, e.ID)
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, id := range backEdges {
		g.RemoveEdge(id)
	}
	return backEdges
}
