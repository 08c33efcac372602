package transform

import "github.com/matzehuels/erchart/pkg/dag"

// AssignLayers assigns nodes to rows (ranks) by longest path.
//
// AssignLayers runs a topological traversal (Kahn's algorithm). Each node is
// placed one row below the deepest of its parents, so that:
//   - Source nodes (no incoming edges) are at row 0
//   - Isolated nodes are at row 0
//   - For every edge u→v, row(v) >= row(u) + 1
//
// Existing row assignments in the DAG are overwritten.
//
// # Cycles
//
// AssignLayers assumes the graph is acyclic. Nodes on a cycle never reach
// zero in-degree and stay at row 0. Run [BreakCycles] first.
//
// # Performance
//
// Time complexity is O(V + E). Parallel edges are counted individually in
// the in-degree, which does not change the result.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		rows[n.ID] = 0
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
