// Package pkg provides the libraries behind erchart, an entity relationship
// diagram generator for content model schemas.
//
// # Overview
//
// erchart reads the schema of a headless CMS or similar system (content types,
// their attributes and the relations between them) and draws it as a layered
// diagram in which every relation runs from the attribute row that declares it
// to the header of the entity it targets.
//
// # Architecture
//
// The data flow through erchart:
//
//	schema records (file, HTTP, SQL, MongoDB)
//	         ↓
//	    [source] package (fetch and select records)
//	         ↓
//	    [schema] package (normalize into entities, filter)
//	         ↓
//	    [erd] package (nodes, ports and edges)
//	         ↓
//	    [layout] package (ranks, ordering, positions)
//	         ↓
//	    [render] package (present onto a surface)
//	         ↓
//	SVG/PNG/PDF/DOT/JSON output, or a live scene
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/erchart/pkg/erd"
//	    "github.com/matzehuels/erchart/pkg/layout"
//	    "github.com/matzehuels/erchart/pkg/render"
//	    "github.com/matzehuels/erchart/pkg/render/nodelink"
//	    "github.com/matzehuels/erchart/pkg/schema"
//	    "github.com/matzehuels/erchart/pkg/source"
//	)
//
//	// 1. Fetch the records
//	records, _ := source.NewFile("schema.json", nil).Fetch(ctx)
//
//	// 2. Normalize and build the diagram
//	entities, _ := schema.Normalize(records, schema.NormalizeOptions{})
//	d, _ := erd.Build(entities, erd.BuildOptions{})
//
//	// 3. Compute the layout
//	res, _ := layout.Layout(d, layout.Options{RankDir: layout.LeftRight})
//
//	// 4. Present and render to SVG
//	s := nodelink.NewSurface(nodelink.Options{RankDir: res.RankDir, Width: res.Width, Height: res.Height})
//	_ = render.Present(ctx, s, d, res)
//	svg, _ := s.SVG(ctx)
//
// Most callers use [pipeline] instead, which runs the same stages with
// caching, observability hooks and last-write-wins reloads.
//
// # Main Packages
//
// ## Domain
//
// [schema] - Raw records as delivered by the CMS and the normalized
// entity model. Normalization never fails; malformed attributes and unknown
// targets become warnings. Also hosts the view filter expressions.
//
// [erd] - The diagram multigraph: one node per entity, one port per
// attribute row plus an identity port, one edge per resolved relation.
//
// [dag] - Directed graph with rows, used by the layout engine.
//
// [dag/transform] - Cycle breaking, longest-path layering and edge
// subdivision.
//
// [layout] - Deterministic layered layout with crossing reduction by
// barycenter ([layout/ordering]).
//
// [render] - The surface abstraction, the presentation step and the
// in-memory [render.Scene]. [render/nodelink] draws with Graphviz.
//
// ## Infrastructure
//
// [source] - Schema providers: memory, file, HTTP, and the [source/sqlstore]
// and [source/mongostore] backends.
//
// [cache] - File, Redis and null caches for schemas, layouts and artifacts.
//
// [graph] - The serialized layout document (JSON).
//
// [pipeline] - Load → layout → present → render, used by the CLI and the
// server.
//
// [observability] - Hooks for pipeline, cache and HTTP events, with a
// Prometheus implementation.
//
// [errors] - Coded errors and warnings shared by all packages.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test -run Example ./pkg/...       # Examples only
//	ERCHART_MONGO_URI=mongodb://localhost:27017 go test ./pkg/source/mongostore/
//
// [schema]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/schema
// [erd]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/erd
// [dag]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/dag/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/layout
// [layout/ordering]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/layout/ordering
// [render]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/render/nodelink
// [render.Scene]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/render#Scene
// [source]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/source
// [source/sqlstore]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/source/sqlstore
// [source/mongostore]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/source/mongostore
// [cache]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/cache
// [graph]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/erchart/pkg/errors
package pkg
