// Package ordering determines the arrangement of nodes within each rank of
// a layered graph.
//
// Finding an ordering with the minimum number of edge crossings is NP-hard.
// [Barycentric] is the classic Sugiyama heuristic:
//
//  1. Start from insertion order
//  2. Sort each rank by the average position of its neighbours in the
//     previous rank, alternating top-down and bottom-up sweeps
//  3. After each sweep, swap adjacent nodes while that reduces crossings
//  4. Return the best ordering found
//
// The result is not optimal but it is deterministic: identical graphs built
// in identical order always yield identical orderings.
//
//	var orderer ordering.Orderer = ordering.Barycentric{Passes: 8}
//	orders := orderer.OrderRows(g) // map[row][]nodeID
package ordering
