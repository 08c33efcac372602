package erd

import "fmt"

// IdentityPort is the name of the port every node carries in addition to its
// attribute ports. Relations without a resolvable inverse attach here.
const IdentityPort = "id"

// Side selects which anchor of a port an edge touches.
type Side int

const (
	// In is the anchor edges arrive at.
	In Side = iota
	// Out is the anchor edges leave from.
	Out
)

func (s Side) String() string {
	if s == Out {
		return "out"
	}
	return "in"
}

// PortKey identifies a port by node and attribute name.
type PortKey struct {
	Node string
	Name string
}

func (k PortKey) String() string { return k.Node + "." + k.Name }

// Anchor is one attachment point of a port.
type Anchor struct {
	Port PortKey
	Side Side
}

// ID returns a stable anchor identifier such as "products.supplier:out".
func (a Anchor) ID() string { return fmt.Sprintf("%s:%s", a.Port, a.Side) }

// Port is a named attachment point on a node. Index is the port's row inside
// the node box: 0 is the header row, attribute rows follow from 1.
type Port struct {
	Key      PortKey
	Index    int
	Identity bool
	// Attribute is empty for the synthetic identity port.
	Attribute string
}

// In returns the inbound anchor.
func (p *Port) In() Anchor { return Anchor{Port: p.Key, Side: In} }

// Out returns the outbound anchor.
func (p *Port) Out() Anchor { return Anchor{Port: p.Key, Side: Out} }

// PortIndex holds every port of a diagram keyed by (node, attribute name).
// Lookup is O(1); per-node port lists keep attribute order.
type PortIndex struct {
	ports  map[PortKey]*Port
	byNode map[string][]*Port
}

// NewPortIndex returns an empty index.
func NewPortIndex() *PortIndex {
	return &PortIndex{
		ports:  make(map[PortKey]*Port),
		byNode: make(map[string][]*Port),
	}
}

// Add registers a port. Adding a key twice keeps the first port.
func (x *PortIndex) Add(p *Port) bool {
	if _, dup := x.ports[p.Key]; dup {
		return false
	}
	x.ports[p.Key] = p
	x.byNode[p.Key.Node] = append(x.byNode[p.Key.Node], p)
	return true
}

// Lookup returns the port for (node, name).
func (x *PortIndex) Lookup(node, name string) (*Port, bool) {
	p, ok := x.ports[PortKey{Node: node, Name: name}]
	return p, ok
}

// Identity returns the identity port of a node.
func (x *PortIndex) Identity(node string) (*Port, bool) {
	return x.Lookup(node, IdentityPort)
}

// Ports returns a node's ports in display order.
func (x *PortIndex) Ports(node string) []*Port { return x.byNode[node] }

// Len returns the total number of ports.
func (x *PortIndex) Len() int { return len(x.ports) }
