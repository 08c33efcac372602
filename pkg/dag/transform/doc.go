// Package transform provides graph transformations that prepare a relation
// graph for layered drawing.
//
// # Overview
//
// Relation graphs between entities are arbitrary directed multigraphs: they
// contain cycles (two entities pointing at each other), self references and
// parallel edges. Layered drawing needs a canonical form where:
//
//   - The graph is acyclic
//   - Every node has a rank (row)
//   - Edges connect only consecutive rows
//
// [Normalize] applies the complete pipeline in the correct order.
//
// # Cycle Breaking
//
// [BreakCycles] runs a depth-first traversal and removes the back edges it
// discovers. Traversal order follows insertion order, so the same input
// always loses the same edges. The removed edge IDs are returned so callers
// can still draw them.
//
// # Layer Assignment
//
// [AssignLayers] computes the longest-path rank of each node: one more than
// the deepest of its parents. Sources and isolated nodes get rank 0.
//
// # Edge Subdivision
//
// [Subdivide] breaks long edges into chains of single-row hops:
//
//	Before: orders (row 0) → regions (row 2)
//	After:  orders → e3~1 → regions
//
// The subdivider nodes give crossing reduction something to order and become
// the bend points of the drawn edge.
package transform
