package render

import (
	"context"

	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/layout"
)

// Present maps a positioned diagram 1:1 onto surface widgets: one node
// widget per node, one link per edge from the source port's outbound anchor
// to the target port's inbound anchor, labeled with the cardinality. Bend
// points from res are handed to links implementing [Router]; res may be nil.
//
// Present fails without touching the surface when ctx is done, a node has
// no position or an edge references a port the widget does not expose.
func Present(ctx context.Context, s Surface, d *erd.Diagram, res *layout.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := layout.Check(d); err != nil {
		return err
	}

	nodes := make([]Node, 0, len(d.Nodes))
	byID := make(map[string]Node, len(d.Nodes))
	for _, n := range d.Nodes {
		w := s.NewNode(SpecFor(d, n))
		x, y, _ := n.Position()
		w.SetPosition(x, y)
		nodes = append(nodes, w)
		byID[n.ID] = w
	}

	links := make([]Link, 0, len(d.Edges))
	for _, e := range d.Edges {
		src := byID[e.Source].Port(e.SourcePort, erd.Out)
		dst := byID[e.Target].Port(e.TargetPort, erd.In)
		if src == nil || dst == nil {
			return errors.New(errors.ErrCodeInternal, "edge %s: surface has no port %s or %s", e.ID, e.From().ID(), e.To().ID())
		}
		l := src.Link(e.ID, dst)
		if e.Label != "" {
			l.AddLabel(e.Label)
		}
		if r, ok := l.(Router); ok && res != nil {
			if bends := res.Bends[e.ID]; len(bends) > 0 {
				pts := make([]Point, len(bends))
				for i, b := range bends {
					pts[i] = Point{X: b.X, Y: b.Y}
				}
				r.SetRoute(pts)
			}
		}
		links = append(links, l)
	}

	s.AddAll(nodes, links)
	return s.Repaint(ctx)
}
