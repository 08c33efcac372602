package erd

import (
	"math"

	"github.com/matzehuels/erchart/pkg/schema"
)

// Node wraps one entity. Size is fixed by [Build]; the position is written
// once by the layout engine through SetPosition.
type Node struct {
	ID     string
	Title  string
	Entity schema.Entity
	Width  float64
	Height float64

	x, y   float64
	placed bool
}

// SetPosition stores the top-left corner of the node box.
func (n *Node) SetPosition(x, y float64) {
	n.x, n.y, n.placed = x, y, true
}

// Position returns the top-left corner and whether the node has been placed.
func (n *Node) Position() (x, y float64, ok bool) { return n.x, n.y, n.placed }

// Center returns the center of a placed node.
func (n *Node) Center() (x, y float64) { return n.x + n.Width/2, n.y + n.Height/2 }

// Placed reports whether the node has a finite position.
func (n *Node) Placed() bool {
	return n.placed && !math.IsNaN(n.x) && !math.IsNaN(n.y) && !math.IsInf(n.x, 0) && !math.IsInf(n.y, 0)
}

// Edge is one resolved relation attribute.
type Edge struct {
	ID         string
	Source     string
	SourcePort string
	Target     string
	TargetPort string
	// Label is the relation's cardinality, possibly empty.
	Label string
}

// From returns the outbound anchor of the source port.
func (e Edge) From() Anchor {
	return Anchor{Port: PortKey{Node: e.Source, Name: e.SourcePort}, Side: Out}
}

// To returns the inbound anchor of the target port.
func (e Edge) To() Anchor {
	return Anchor{Port: PortKey{Node: e.Target, Name: e.TargetPort}, Side: In}
}

// Diagram is the multigraph produced by [Build]. Nodes follow entity order
// and edges follow entity then attribute order.
type Diagram struct {
	Nodes []*Node
	Edges []Edge
	Ports *PortIndex

	index map[string]int
}

// Node returns the node with the given ID.
func (d *Diagram) Node(id string) (*Node, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.Nodes[i], true
}

// Edge returns the edge with the given ID.
func (d *Diagram) Edge(id string) (Edge, bool) {
	for _, e := range d.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Unplaced returns the IDs of nodes without a finite position.
func (d *Diagram) Unplaced() []string {
	var out []string
	for _, n := range d.Nodes {
		if !n.Placed() {
			out = append(out, n.ID)
		}
	}
	return out
}
