package layout

import (
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erchart/pkg/dag"
	"github.com/matzehuels/erchart/pkg/dag/transform"
	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/layout/ordering"
)

// Point is a position in diagram coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result describes a computed layout. Node positions themselves are written
// to the diagram's nodes.
type Result struct {
	RankDir RankDir
	// Ranks maps every node ID to its rank.
	Ranks map[string]int
	// Order lists the entity node IDs of each rank in placement order.
	Order [][]string
	// Broken lists the edges removed to make the graph acyclic. They are
	// still drawn but do not constrain ranking.
	Broken []string
	// Bends maps edge IDs spanning more than one rank to their interior
	// points, from source to target.
	Bends map[string][]Point
	// Crossings is the number of edge crossings of the final ordering.
	Crossings int
	Width     float64
	Height    float64
}

// Layout assigns every node of d a position using a layered discipline:
//
//  1. Back edges found by depth-first search are suppressed
//  2. Nodes are ranked by longest path; isolated nodes get rank 0
//  3. Long edges are subdivided and ranks ordered by barycenter
//  4. Rank and order are converted to pixel centers using fixed margins,
//     separations and node sizes, then translated to top-left corners
//
// Layout mutates node positions only, never the topology. Identical diagrams
// produce identical positions. A node left without a finite position, or two
// overlapping boxes, yield a LAYOUT_INVARIANT_VIOLATION error.
func Layout(d *erd.Diagram, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	start := time.Now()

	g := dag.New(nil)
	for _, n := range d.Nodes {
		if err := g.AddNode(dag.Node{ID: n.ID}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLayoutInvariant, err, "add node %s", n.ID)
		}
	}
	for _, e := range d.Edges {
		if _, err := g.AddEdge(dag.Edge{ID: e.ID, From: e.Source, To: e.Target}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLayoutInvariant, err, "add edge %s", e.ID)
		}
	}

	norm, err := transform.Normalize(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutInvariant, err, "normalize graph")
	}
	logger.Debug("ranked", "ranks", norm.Rows, "broken", len(norm.Broken), "subdividers", norm.Subdividers)

	orders := ordering.Barycentric{Passes: opts.Passes}.OrderRows(g)
	crossings := dag.CountCrossings(g, orders)
	logger.Debug("ordered", "crossings", crossings, "passes", opts.Passes)

	res := &Result{
		RankDir:   opts.RankDir,
		Ranks:     make(map[string]int, len(d.Nodes)),
		Broken:    norm.Broken,
		Bends:     make(map[string][]Point),
		Crossings: crossings,
	}
	centers := place(g, d, orders, opts, res)

	for _, row := range g.RowIDs() {
		var ids []string
		for _, id := range orders[row] {
			if n, _ := g.Node(id); !n.IsSubdivider() {
				ids = append(ids, id)
			}
		}
		res.Order = append(res.Order, ids)
	}
	for _, n := range d.Nodes {
		gn, _ := g.Node(n.ID)
		res.Ranks[n.ID] = gn.Row
		c, ok := centers[n.ID]
		if !ok {
			continue
		}
		n.SetPosition(c.X-n.Width/2, c.Y-n.Height/2)
	}

	if err := Check(d); err != nil {
		return nil, err
	}
	if minX, minY, maxX, maxY := Bounds(d); minX < -epsilon || minY < -epsilon || maxX > res.Width+epsilon || maxY > res.Height+epsilon {
		return nil, errors.New(errors.ErrCodeLayoutInvariant, "nodes exceed the %gx%g canvas", res.Width, res.Height)
	}
	logger.Debug("placed", "nodes", len(d.Nodes), "width", res.Width, "height", res.Height, "elapsed", time.Since(start))
	return res, nil
}

// place computes node centers along the rank and order axes and fills the
// canvas size and edge bends of res.
func place(g *dag.DAG, d *erd.Diagram, orders map[int][]string, opts Options, res *Result) map[string]Point {
	horizontal := opts.RankDir.Horizontal()
	marginRank, marginOrder := opts.MarginY, opts.MarginX
	if horizontal {
		marginRank, marginOrder = opts.MarginX, opts.MarginY
	}

	// extent returns a node's size along the rank axis and the order axis.
	extent := func(id string) (alongRank, alongOrder float64) {
		n, ok := d.Node(id)
		if !ok {
			return 0, 0
		}
		if horizontal {
			return n.Width, n.Height
		}
		return n.Height, n.Width
	}

	rows := g.RowIDs()
	thickness := make([]float64, len(rows))
	spans := make([]float64, len(rows))
	for i, r := range rows {
		for j, id := range orders[r] {
			ra, oa := extent(id)
			thickness[i] = max(thickness[i], ra)
			spans[i] += oa
			if j > 0 {
				spans[i] += opts.NodeSep
			}
		}
	}
	widest := 0.0
	for _, s := range spans {
		widest = max(widest, s)
	}
	rankTotal := 2 * marginRank
	for i, t := range thickness {
		rankTotal += t
		if i > 0 {
			rankTotal += opts.RankSep
		}
	}

	centers := make(map[string]Point, g.NodeCount())
	cursorRank := marginRank
	for i, r := range rows {
		rankCenter := cursorRank + thickness[i]/2
		if opts.RankDir.Reversed() {
			rankCenter = rankTotal - rankCenter
		}
		cursorOrder := marginOrder + (widest-spans[i])/2
		for _, id := range orders[r] {
			_, oa := extent(id)
			orderCenter := cursorOrder + oa/2
			cursorOrder += oa + opts.NodeSep
			if horizontal {
				centers[id] = Point{X: rankCenter, Y: orderCenter}
			} else {
				centers[id] = Point{X: orderCenter, Y: rankCenter}
			}
		}
		cursorRank += thickness[i] + opts.RankSep
	}

	orderTotal := widest + 2*marginOrder
	if horizontal {
		res.Width, res.Height = rankTotal, orderTotal
	} else {
		res.Width, res.Height = orderTotal, rankTotal
	}

	for _, n := range g.Nodes() {
		if n.IsSubdivider() {
			res.Bends[n.EdgeID] = append(res.Bends[n.EdgeID], centers[n.ID])
		}
	}
	return centers
}

// Check verifies the layout invariants on a positioned diagram: every node
// has a finite position and no two node boxes overlap.
func Check(d *erd.Diagram) error {
	if missing := d.Unplaced(); len(missing) > 0 {
		return errors.New(errors.ErrCodeLayoutInvariant, "%d node(s) without position: %v", len(missing), missing)
	}
	nodes := slices.Clone(d.Nodes)
	slices.SortStableFunc(nodes, func(a, b *erd.Node) int {
		ax, _, _ := a.Position()
		bx, _, _ := b.Position()
		switch {
		case ax < bx:
			return -1
		case ax > bx:
			return 1
		}
		return 0
	})
	for i, a := range nodes {
		ax, ay, _ := a.Position()
		for _, b := range nodes[i+1:] {
			bx, by, _ := b.Position()
			if bx >= ax+a.Width {
				break
			}
			if overlaps(ay, a.Height, by, b.Height) && overlaps(ax, a.Width, bx, b.Width) {
				return errors.New(errors.ErrCodeLayoutInvariant, "nodes %s and %s overlap", a.ID, b.ID)
			}
		}
	}
	return nil
}

const epsilon = 1e-9

func overlaps(p1, len1, p2, len2 float64) bool {
	return p1+len1 > p2+epsilon && p2+len2 > p1+epsilon
}

// Bounds returns the bounding box of all placed nodes.
func Bounds(d *erd.Diagram) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range d.Nodes {
		x, y, ok := n.Position()
		if !ok {
			continue
		}
		minX, minY = min(minX, x), min(minY, y)
		maxX, maxY = max(maxX, x+n.Width), max(maxY, y+n.Height)
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX, maxY
}
