package graph

import (
	"slices"

	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/layout"
	"github.com/matzehuels/erchart/pkg/render"
)

// =============================================================================
// Diagram ↔ Layout Conversion
// =============================================================================

// Export converts a positioned diagram and its layout result to the
// serialization format. Nodes and edges keep diagram order.
func Export(d *erd.Diagram, res *layout.Result) (Layout, error) {
	if res == nil {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "export: layout result is nil")
	}
	if err := layout.Check(d); err != nil {
		return Layout{}, err
	}

	out := Layout{
		Version:   FormatVersion,
		RankDir:   string(res.RankDir),
		Width:     res.Width,
		Height:    res.Height,
		Nodes:     make([]Node, 0, len(d.Nodes)),
		Edges:     make([]Edge, 0, len(d.Edges)),
		Rows:      cloneRows(res.Order),
		Crossings: res.Crossings,
	}

	for _, n := range d.Nodes {
		out.Entities = append(out.Entities, n.Entity)
		out.Nodes = append(out.Nodes, nodeFromDiagram(d, n, res.Ranks[n.ID]))
	}

	for _, e := range d.Edges {
		je := Edge{
			ID:       e.ID,
			From:     e.Source,
			FromPort: e.SourcePort,
			To:       e.Target,
			ToPort:   e.TargetPort,
			Label:    e.Label,
			Broken:   slices.Contains(res.Broken, e.ID),
		}
		for _, b := range res.Bends[e.ID] {
			je.Route = append(je.Route, Point{X: b.X, Y: b.Y})
		}
		out.Edges = append(out.Edges, je)
	}

	return out, nil
}

// Import rebuilds a positioned diagram from a serialized layout. The
// entities are built with opts, then every node receives the stored size and
// position. The document must describe exactly the nodes and edges its
// entities produce.
func Import(l Layout, opts erd.BuildOptions) (*erd.Diagram, *layout.Result, error) {
	dir, err := layout.ParseRankDir(l.RankDir)
	if err != nil {
		return nil, nil, err
	}

	d, _ := erd.Build(l.Entities, opts)
	if len(d.Nodes) != len(l.Nodes) {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"layout has %d nodes but its entities build %d", len(l.Nodes), len(d.Nodes))
	}

	res := &layout.Result{
		RankDir:   dir,
		Ranks:     make(map[string]int, len(l.Nodes)),
		Order:     cloneRows(l.Rows),
		Bends:     make(map[string][]layout.Point),
		Crossings: l.Crossings,
		Width:     l.Width,
		Height:    l.Height,
	}

	for _, jn := range l.Nodes {
		n, ok := d.Node(jn.ID)
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "layout node %q has no entity", jn.ID)
		}
		n.Width, n.Height = jn.Width, jn.Height
		n.SetPosition(jn.X, jn.Y)
		res.Ranks[jn.ID] = jn.Rank
	}

	for _, je := range l.Edges {
		if _, ok := d.Edge(je.ID); !ok {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "layout edge %q has no relation", je.ID)
		}
		if je.Broken {
			res.Broken = append(res.Broken, je.ID)
		}
		for _, p := range je.Route {
			res.Bends[je.ID] = append(res.Bends[je.ID], layout.Point{X: p.X, Y: p.Y})
		}
	}
	if len(d.Edges) != len(l.Edges) {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"layout has %d edges but its entities build %d", len(l.Edges), len(d.Edges))
	}

	if err := layout.Check(d); err != nil {
		return nil, nil, err
	}
	return d, res, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// nodeFromDiagram is the single point of conversion for erd.Node → Node.
// Port labels match what render surfaces display.
func nodeFromDiagram(d *erd.Diagram, n *erd.Node, rank int) Node {
	x, y, _ := n.Position()
	spec := render.SpecFor(d, n)
	node := Node{
		ID:     n.ID,
		Label:  n.Title,
		Rank:   rank,
		X:      x,
		Y:      y,
		Width:  n.Width,
		Height: n.Height,
		Ports:  make([]Port, 0, len(spec.Ports)),
	}
	for _, p := range spec.Ports {
		node.Ports = append(node.Ports, Port{Name: p.Name, Label: p.Label, Index: p.Index, Identity: p.Identity})
	}
	return node
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
