// Package dag provides a directed graph organized into rows (ranks) for
// layered layouts of entity-relationship diagrams.
//
// # Overview
//
// Nodes are entities, edges are relation attributes. The graph accepts what
// real schemas contain: cycles, self references and parallel edges between
// the same pair of entities. Every edge carries an ID so that parallel edges
// stay individually addressable through cycle breaking, subdivision and
// rendering.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "products"})
//	g.AddNode(dag.Node{ID: "suppliers"})
//	g.AddEdge(dag.Edge{ID: "products.supplier", From: "products", To: "suppliers"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.NodesInRow]
// and related methods. [DAG.Validate] checks the canonical layered form
// produced by the [transform] package: acyclic, consecutive rows only.
//
// # Determinism
//
// Every accessor returns nodes and edges in insertion order. Layout code
// relies on this: identical input produces identical ranks, orderings and
// coordinates across runs.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a Fenwick
// tree in O(E log V). [CountPairCrossingsWithPos] evaluates a single
// neighbour swap and drives the transpose heuristic of the layout engine.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
//
// [transform]: github.com/matzehuels/erchart/pkg/dag/transform
package dag
