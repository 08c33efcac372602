package transform

import "github.com/matzehuels/erchart/pkg/dag"

// Result reports what [Normalize] changed.
type Result struct {
	// Broken lists the IDs of edges removed to make the graph acyclic.
	Broken []string
	// Rows is the number of ranks after layering.
	Rows int
	// Subdividers is the number of synthetic nodes inserted.
	Subdividers int
}

// Normalize prepares an arbitrary directed multigraph for layered ordering:
// cycles are broken, rows assigned by longest path, and long edges
// subdivided. The graph is modified in place.
func Normalize(g *dag.DAG) (Result, error) {
	before := g.NodeCount()
	broken := BreakCycles(g)
	AssignLayers(g)
	if err := Subdivide(g); err != nil {
		return Result{Broken: broken}, err
	}
	return Result{
		Broken:      broken,
		Rows:        g.RowCount(),
		Subdividers: g.NodeCount() - before,
	}, nil
}
