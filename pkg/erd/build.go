package erd

import (
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/schema"
)

// Sizing controls node box dimensions. Height grows strictly with the number
// of attributes; width grows with the longest row label.
type Sizing struct {
	MinWidth     float64
	CharWidth    float64
	HeaderHeight float64
	RowHeight    float64
	Padding      float64
}

// DefaultSizing matches the built-in DOT and HTML node templates.
var DefaultSizing = Sizing{
	MinWidth:     160,
	CharWidth:    7,
	HeaderHeight: 30,
	RowHeight:    20,
	Padding:      10,
}

// Size returns the box size for an entity.
func (s Sizing) Size(e schema.Entity) (width, height float64) {
	longest := len([]rune(e.DisplayName))
	for _, a := range e.Attributes {
		if n := len([]rune(RowLabel(a))); n > longest {
			longest = n
		}
	}
	width = max(s.MinWidth, float64(longest)*s.CharWidth+2*s.Padding)
	height = s.HeaderHeight + float64(len(e.Attributes))*s.RowHeight + s.Padding
	return width, height
}

// RowLabel is the text of an attribute row: "name: type" for scalars and
// "name → target" for relations.
func RowLabel(a schema.Attribute) string {
	if a.IsRelation() {
		return a.Name + " → " + a.Relation.TargetEntityID
	}
	return a.Name + ": " + a.Type
}

// BuildOptions configures [Build].
type BuildOptions struct {
	// Sizing defaults to DefaultSizing when zero.
	Sizing Sizing
	// Logger receives DEBUG lines for every node and edge and WARN lines for
	// unresolved relations. A nil Logger discards output.
	Logger *log.Logger
}

// Build turns normalized entities into a port-resolved multigraph.
//
// One node is created per entity, with an identity port plus one port per
// attribute. One edge is created per relation attribute whose target entity
// is present: it leaves the attribute's own port and arrives at the inverse
// attribute's port on the target, or at the target's identity port when no
// inverse is declared or the declared one does not exist. Relations to absent
// entities yield no edge.
//
// Edge order equals entity order then attribute order. Build never fails;
// anomalies come back as warnings.
func Build(entities []schema.Entity, opts BuildOptions) (*Diagram, []errors.Warning) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	sizing := opts.Sizing
	if sizing == (Sizing{}) {
		sizing = DefaultSizing
	}

	d := &Diagram{
		Nodes: make([]*Node, 0, len(entities)),
		Ports: NewPortIndex(),
		index: make(map[string]int, len(entities)),
	}
	var warnings []errors.Warning
	warn := func(w errors.Warning) {
		warnings = append(warnings, w)
		logger.Warn(w.Message, "code", w.Code, "entity", w.Entity, "attribute", w.Attribute)
	}

	for _, e := range entities {
		if _, dup := d.index[e.ID]; dup {
			warn(errors.Warning{Code: errors.ErrCodeInvalidInput, Entity: e.ID, Message: "duplicate entity id, node skipped"})
			continue
		}
		w, h := sizing.Size(e)
		n := &Node{ID: e.ID, Title: e.DisplayName, Entity: e, Width: w, Height: h}
		d.index[e.ID] = len(d.Nodes)
		d.Nodes = append(d.Nodes, n)
		addPorts(d.Ports, e)
		logger.Debug("node", "id", n.ID, "ports", len(d.Ports.Ports(n.ID)), "width", w, "height", h)
	}

	edgeIDs := make(map[string]struct{})
	for _, n := range d.Nodes {
		for _, a := range n.Entity.Attributes {
			if !a.IsRelation() {
				continue
			}
			rel := a.Relation
			if _, ok := d.index[rel.TargetEntityID]; !ok {
				warn(errors.UnresolvedRelation(n.ID, a.Name, "target entity %q is not in the schema, relation dropped", rel.TargetEntityID))
				continue
			}
			targetPort := IdentityPort
			if rel.Inverse != "" {
				if p, ok := d.Ports.Lookup(rel.TargetEntityID, rel.Inverse); ok {
					targetPort = p.Key.Name
				} else {
					warn(errors.UnresolvedRelation(n.ID, a.Name, "inverse %q not found on %q, using identity port", rel.Inverse, rel.TargetEntityID))
				}
			}
			edge := Edge{
				ID:         uniqueEdgeID(edgeIDs, n.ID+"."+a.Name),
				Source:     n.ID,
				SourcePort: a.Name,
				Target:     rel.TargetEntityID,
				TargetPort: targetPort,
				Label:      rel.Cardinality,
			}
			d.Edges = append(d.Edges, edge)
			logger.Debug("edge", "id", edge.ID, "from", edge.From().ID(), "to", edge.To().ID(), "label", edge.Label)
		}
	}
	return d, warnings
}

// addPorts registers the identity port and one port per attribute. An
// attribute literally named "id" doubles as the identity port.
func addPorts(x *PortIndex, e schema.Entity) {
	if _, ok := e.Attribute(IdentityPort); !ok {
		x.Add(&Port{Key: PortKey{Node: e.ID, Name: IdentityPort}, Index: 0, Identity: true})
	}
	for i, a := range e.Attributes {
		x.Add(&Port{
			Key:       PortKey{Node: e.ID, Name: a.Name},
			Index:     i + 1,
			Identity:  a.Name == IdentityPort,
			Attribute: a.Name,
		})
	}
}

func uniqueEdgeID(used map[string]struct{}, base string) string {
	id := base
	for i := 2; ; i++ {
		if _, dup := used[id]; !dup {
			used[id] = struct{}{}
			return id
		}
		id = base + "#" + strconv.Itoa(i)
	}
}
