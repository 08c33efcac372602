// Package nodelink draws positioned entity-relationship diagrams with
// Graphviz.
//
// # Overview
//
// [Surface] implements the render surface contract by emitting DOT: one
// HTML-table node per entity with one row (and DOT port) per attribute, each
// node pinned at the position computed by the layout engine, and one edge per
// relation between the attribute ports. Which side of a row an edge touches
// follows the rank direction.
//
//	s := nodelink.NewSurface(nodelink.Options{RankDir: res.RankDir, Width: res.Width, Height: res.Height})
//	_ = render.Present(ctx, s, diagram, res)
//	svg, err := s.SVG(ctx)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
// The neato engine keeps pinned nodes in place and only routes edges, so
// Graphviz never overrides the layout.
package nodelink
