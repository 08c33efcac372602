// Package layout positions the nodes of an entity-relationship diagram.
//
// # Overview
//
// [Layout] applies a layered (Sugiyama-style) discipline to the multigraph
// built by the erd package:
//
//  1. Cycle breaking: back edges found by a depth-first traversal in
//     insertion order are suppressed for ranking and reported in
//     [Result.Broken]
//  2. Ranking: longest path, so every remaining edge u→v satisfies
//     rank(v) >= rank(u)+1; isolated nodes get rank 0
//  3. Ordering: long edges are subdivided and every rank is sorted by the
//     barycenter heuristic with transpose refinement
//  4. Placement: ranks become bands along the rank axis, nodes are packed
//     along the order axis with fixed separations and margins, and node
//     centers are translated to top-left corners
//
// The [RankDir] decides where rank 0 sits: TB puts it on top, RL (the
// default) on the right.
//
// # Determinism
//
// No stage depends on map iteration order or randomness. Identical diagrams
// yield identical ranks, orderings and positions, which makes layouts
// cacheable by content hash.
//
// # Invariants
//
// After placement [Check] verifies that every node has a finite position and
// that no two boxes overlap. A violation is a LAYOUT_INVARIANT_VIOLATION
// error, never a silent partial layout.
package layout
