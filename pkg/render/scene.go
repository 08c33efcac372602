package render

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/matzehuels/erchart/pkg/erd"
)

// Scene is an in-memory [Surface]. It records the widget model as plain data
// so that it can be serialized to JSON and drawn by a browser, or inspected
// in tests.
//
// A Scene is safe for concurrent use: Repaint replaces the published model
// atomically with respect to Snapshot.
type Scene struct {
	// OnRepaint, if set, is called with the published model on every
	// successful Repaint.
	OnRepaint func(ctx context.Context, m SceneModel) error

	mu        sync.Mutex
	pending   SceneModel
	published SceneModel
	repaints  int
}

// SceneModel is the serializable widget model of a scene.
type SceneModel struct {
	Nodes []*SceneNode `json:"nodes"`
	Links []*SceneLink `json:"links"`
}

// SceneNode is a node widget.
type SceneNode struct {
	NodeID string       `json:"id"`
	Title  string       `json:"title"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	W      float64      `json:"width"`
	H      float64      `json:"height"`
	Ports  []*ScenePort `json:"ports"`
}

// ScenePort is one port row. Its two anchors are addressed as
// "<node>.<port>:in" and "<node>.<port>:out".
type ScenePort struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Index    int    `json:"index"`
	Identity bool   `json:"identity,omitempty"`

	node *SceneNode
}

// SceneLink is a link widget between two anchors.
type SceneLink struct {
	LinkID string   `json:"id"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Labels []string `json:"labels,omitempty"`
	Route  []Point  `json:"route,omitempty"`
}

// NewScene returns an empty scene.
func NewScene() *Scene { return &Scene{} }

// NewNode implements [Surface].
func (s *Scene) NewNode(spec NodeSpec) Node {
	n := &SceneNode{NodeID: spec.ID, Title: spec.Title, W: spec.Width, H: spec.Height}
	for _, p := range spec.Ports {
		n.Ports = append(n.Ports, &ScenePort{Name: p.Name, Label: p.Label, Index: p.Index, Identity: p.Identity, node: n})
	}
	return n
}

// AddAll implements [Surface]. It replaces the pending model; widgets not
// created by this scene are ignored.
func (s *Scene) AddAll(nodes []Node, links []Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = SceneModel{}
	for _, n := range nodes {
		if sn, ok := n.(*SceneNode); ok {
			s.pending.Nodes = append(s.pending.Nodes, sn)
		}
	}
	for _, l := range links {
		if sl, ok := l.(*SceneLink); ok {
			s.pending.Links = append(s.pending.Links, sl)
		}
	}
}

// Repaint implements [Surface]: the pending model becomes the published one.
// A canceled repaint discards the pending model and keeps the published one.
func (s *Scene) Repaint(ctx context.Context) error {
	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		s.pending = SceneModel{}
		s.mu.Unlock()
		return err
	}
	s.published, s.pending = s.pending, SceneModel{}
	s.repaints++
	m := s.published
	s.mu.Unlock()
	if s.OnRepaint != nil {
		return s.OnRepaint(ctx, m)
	}
	return nil
}

// Snapshot returns the last published model.
func (s *Scene) Snapshot() SceneModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published
}

// Repaints returns how many times the scene was repainted.
func (s *Scene) Repaints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repaints
}

// MarshalJSON encodes the published model.
func (s *Scene) MarshalJSON() ([]byte, error) { return json.Marshal(s.Snapshot()) }

// ID implements [Node].
func (n *SceneNode) ID() string { return n.NodeID }

// Width implements [Node].
func (n *SceneNode) Width() float64 { return n.W }

// Height implements [Node].
func (n *SceneNode) Height() float64 { return n.H }

// SetPosition implements [Node].
func (n *SceneNode) SetPosition(x, y float64) { n.X, n.Y = x, y }

// Port implements [Node].
func (n *SceneNode) Port(name string, side erd.Side) Port {
	for _, p := range n.Ports {
		if p.Name == name {
			return sceneAnchor{port: p, side: side}
		}
	}
	return nil
}

type sceneAnchor struct {
	port *ScenePort
	side erd.Side
}

func (a sceneAnchor) id() string {
	return erd.Anchor{Port: erd.PortKey{Node: a.port.node.NodeID, Name: a.port.Name}, Side: a.side}.ID()
}

func (a sceneAnchor) Link(id string, to Port) Link {
	l := &SceneLink{LinkID: id, From: a.id()}
	if t, ok := to.(sceneAnchor); ok {
		l.To = t.id()
	}
	return l
}

// AddLabel implements [Link].
func (l *SceneLink) AddLabel(text string) { l.Labels = append(l.Labels, text) }

// SetRoute implements [Router].
func (l *SceneLink) SetRoute(points []Point) { l.Route = points }
