package graph

import (
	"github.com/matzehuels/erchart/pkg/schema"
)

// FormatVersion is written into every document. Documents with a newer
// version are rejected by [UnmarshalLayout].
const FormatVersion = 1

// =============================================================================
// Layout - Positioned Diagram Serialization
// =============================================================================

// Layout is the canonical serialization format for a positioned
// entity-relationship diagram. Used for JSON files, API responses and the
// layout cache.
//
// The document carries the normalized entities next to the computed
// geometry, so that a diagram can be rebuilt and redrawn without fetching the
// schema or running the layout engine again:
//
//	export → marshal → unmarshal → import produces the same positions.
type Layout struct {
	Version int     `json:"version" bson:"version"`
	RankDir string  `json:"rankdir" bson:"rankdir"`
	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`

	Entities []schema.Entity `json:"entities" bson:"entities"`
	Nodes    []Node          `json:"nodes" bson:"nodes"`
	Edges    []Edge          `json:"edges" bson:"edges"`

	// Rows lists entity IDs per rank in placement order.
	Rows      [][]string `json:"rows,omitempty" bson:"rows,omitempty"`
	Crossings int        `json:"crossings" bson:"crossings"`
}

// Node is a positioned entity box. X and Y are the top-left corner.
type Node struct {
	ID     string  `json:"id" bson:"id"`
	Label  string  `json:"label" bson:"label"`
	Rank   int     `json:"rank" bson:"rank"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Ports  []Port  `json:"ports" bson:"ports"`
}

// Port is one row of an entity box.
type Port struct {
	Name     string `json:"name" bson:"name"`
	Label    string `json:"label" bson:"label"`
	Index    int    `json:"index" bson:"index"`
	Identity bool   `json:"identity,omitempty" bson:"identity,omitempty"`
}

// Edge is a relation drawn from a source port to a target port.
type Edge struct {
	ID       string `json:"id" bson:"id"`
	From     string `json:"from" bson:"from"`
	FromPort string `json:"from_port" bson:"from_port"`
	To       string `json:"to" bson:"to"`
	ToPort   string `json:"to_port" bson:"to_port"`
	Label    string `json:"label,omitempty" bson:"label,omitempty"`
	// Broken marks edges suppressed during ranking to break a cycle.
	Broken bool    `json:"broken,omitempty" bson:"broken,omitempty"`
	Route  []Point `json:"route,omitempty" bson:"route,omitempty"`
}

// Point is a bend point of an edge route.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node returns the node with the given ID.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
