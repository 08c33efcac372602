package ordering

import (
	"slices"

	"github.com/matzehuels/erchart/pkg/dag"
)

// Orderer determines the sequence of nodes in each row of a layered graph.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// DefaultPasses is the number of sweep pairs run by a zero [Barycentric].
const DefaultPasses = 4

// Barycentric is the classic barycenter heuristic with transpose refinement.
//
// Each pass sweeps top-down, sorting every row by the mean position of its
// parents, then bottom-up by the mean position of its children, and after
// each sweep swaps adjacent nodes while that reduces crossings. The best
// ordering seen is returned.
//
// Ties keep the previous relative order (stable sort), and the initial order
// is insertion order, so the result is deterministic.
type Barycentric struct {
	// Passes is the number of down/up sweep pairs. Zero means DefaultPasses;
	// a negative value disables sweeping and returns the initial order.
	Passes int
}

// OrderRows implements [Orderer].
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	rows := g.RowIDs()
	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	passes := b.Passes
	if passes == 0 {
		passes = DefaultPasses
	}
	if passes < 0 || len(rows) < 2 {
		return orders
	}

	best := clone(orders)
	bestCrossings := dag.CountCrossings(g, orders)
	for p := 0; p < passes && bestCrossings > 0; p++ {
		for i := 1; i < len(rows); i++ {
			sortByBarycenter(g, orders, rows[i], rows[i-1], true)
		}
		transpose(g, orders, rows)
		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = clone(orders), c
		}

		for i := len(rows) - 2; i >= 0; i-- {
			sortByBarycenter(g, orders, rows[i], rows[i+1], false)
		}
		transpose(g, orders, rows)
		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = clone(orders), c
		}
	}
	return best
}

// sortByBarycenter reorders row by the mean position of each node's
// neighbours in adj. Nodes without neighbours keep their current index as
// their key.
func sortByBarycenter(g *dag.DAG, orders map[int][]string, row, adj int, useParents bool) {
	adjPos := dag.PosMap(orders[adj])
	type keyed struct {
		id  string
		key float64
	}
	nodes := make([]keyed, len(orders[row]))
	for i, id := range orders[row] {
		var nbrs []string
		if useParents {
			nbrs = g.ParentsInRow(id, adj)
		} else {
			nbrs = g.ChildrenInRow(id, adj)
		}
		key := float64(i)
		if len(nbrs) > 0 {
			sum := 0
			for _, n := range nbrs {
				sum += adjPos[n]
			}
			key = float64(sum) / float64(len(nbrs))
		}
		nodes[i] = keyed{id, key}
	}
	slices.SortStableFunc(nodes, func(a, b keyed) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})
	for i, n := range nodes {
		orders[row][i] = n.id
	}
}

// transpose swaps adjacent nodes while doing so strictly reduces the
// crossings with both neighbouring rows.
func transpose(g *dag.DAG, orders map[int][]string, rows []int) {
	for improved, rounds := true, 0; improved && rounds < 8; rounds++ {
		improved = false
		for idx, r := range rows {
			var above, below map[string]int
			if idx > 0 {
				above = dag.PosMap(orders[rows[idx-1]])
			}
			if idx < len(rows)-1 {
				below = dag.PosMap(orders[rows[idx+1]])
			}
			row := orders[r]
			for i := 0; i+1 < len(row); i++ {
				l, rt := row[i], row[i+1]
				keep := pairCrossings(g, l, rt, above, below)
				swap := pairCrossings(g, rt, l, above, below)
				if swap < keep {
					row[i], row[i+1] = rt, l
					improved = true
				}
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, below, false)
	}
	return c
}

func clone(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
