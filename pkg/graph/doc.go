// Package graph provides the serialization format for positioned
// entity-relationship diagrams.
//
// This package defines the canonical wire format for erchart's layout data,
// used for JSON files, API responses, caching, and re-rendering a diagram
// without recomputing it.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Layout]: Serialization type (this package)
//   - pkg/erd.Diagram: Internal diagram (nodes, ports, edges)
//   - pkg/layout.Result: Ranks, orders, bends and canvas size
//
// Use [Export] and [Import] to convert between them.
//
// # Layout Serialization
//
// A document stores the normalized entities, every node box with its
// top-left corner and port rows, and every edge with its ports, cardinality
// label and bend points:
//
//	{
//	  "version": 1,
//	  "rankdir": "RL",
//	  "entities": [...],
//	  "nodes": [{"id": "products", "x": 25, "y": 25, "width": 167, "height": 80, "ports": [...]}],
//	  "edges": [{"id": "products.supplier", "from": "products", "from_port": "supplier", "to": "suppliers", "to_port": "id"}]
//	}
//
// Common operations:
//
//	doc, _ := graph.Export(diagram, result)        // Diagram → Layout
//	graph.WriteLayoutFile(doc, "layout.json")      // Layout → File
//	doc, _ = graph.ReadLayoutFile("layout.json")   // File → Layout
//	d, res, _ := graph.Import(doc, erd.BuildOptions{})
//
// [Import] rebuilds the diagram from the stored entities and then applies the
// stored geometry; documents whose nodes or edges disagree with their
// entities are rejected.
package graph
