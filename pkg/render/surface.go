package render

import (
	"context"

	"github.com/matzehuels/erchart/pkg/erd"
)

// Surface is the minimal capability set a diagramming backend must offer.
// Widgets are created through the surface, populated in one AddAll call and
// drawn by Repaint. AddAll replaces any widgets a previous call left behind,
// so a repaint only ever shows one diagram.
type Surface interface {
	NewNode(spec NodeSpec) Node
	AddAll(nodes []Node, links []Link)
	Repaint(ctx context.Context) error
}

// Node is a node widget.
type Node interface {
	ID() string
	Width() float64
	Height() float64
	SetPosition(x, y float64)
	// Port returns the anchor widget for an attribute port, or nil.
	Port(name string, side erd.Side) Port
}

// Port is one anchor of a node port.
type Port interface {
	Link(id string, to Port) Link
}

// Link is an edge widget.
type Link interface {
	AddLabel(text string)
}

// Router is implemented by links that can follow bend points.
type Router interface {
	SetRoute(points []Point)
}

// Point is a bend point in diagram coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeSpec describes the widget to create for a diagram node.
type NodeSpec struct {
	ID     string
	Title  string
	Width  float64
	Height float64
	Ports  []PortSpec
}

// PortSpec describes one port row of a node widget.
type PortSpec struct {
	Name     string
	Label    string
	Index    int
	Identity bool
}

// SpecFor derives the widget description of a diagram node.
func SpecFor(d *erd.Diagram, n *erd.Node) NodeSpec {
	spec := NodeSpec{ID: n.ID, Title: n.Title, Width: n.Width, Height: n.Height}
	for _, p := range d.Ports.Ports(n.ID) {
		ps := PortSpec{Name: p.Key.Name, Index: p.Index, Identity: p.Identity, Label: n.Title}
		if p.Attribute != "" {
			if a, ok := n.Entity.Attribute(p.Attribute); ok {
				ps.Label = erd.RowLabel(a)
			}
		}
		spec.Ports = append(spec.Ports, ps)
	}
	return spec
}
