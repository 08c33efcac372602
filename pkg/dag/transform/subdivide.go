package transform

import (
	"fmt"

	"github.com/matzehuels/erchart/pkg/dag"
)

// MetaOriginalEdge is the edge metadata key holding the ID of the edge a
// subdivided segment was cut from.
const MetaOriginalEdge = "original_edge"

// Subdivide breaks edges that span multiple rows into chains of single-row
// edges connected by synthetic subdivider nodes:
//
//	Before: products (row 0) → regions (row 3)
//	After:  products → e0~1 → e0~2 → regions
//
// Subdividers record the original edge in [dag.Node.EdgeID] and its source in
// MasterID. Every segment carries the original edge ID under
// [MetaOriginalEdge] along with the original edge's metadata, so bend points
// can be collected per edge after ordering.
//
// Edges are processed in insertion order and subdivider and segment IDs
// derive from the edge ID, which keeps the result deterministic. Generated IDs
// never collide with existing node or edge IDs.
func Subdivide(g *dag.DAG) error {
	nodeIDs := newIDGen(dag.NodeIDs(g.Nodes()))
	edges := g.Edges()
	edgeIDs := newIDGen(edgeIDs(edges))
	for _, e := range edges {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		g.RemoveEdge(e.ID)
		prevID := src.ID
		seg := 0
		for row := src.Row + 1; row < dst.Row; row++ {
			id := nodeIDs.next(fmt.Sprintf("%s~%d", e.ID, row))
			err := g.AddNode(dag.Node{
				ID:       id,
				Row:      row,
				Kind:     dag.NodeKindSubdivider,
				MasterID: src.ID,
				EdgeID:   e.ID,
			})
			if err != nil {
				return fmt.Errorf("subdivide %s: %w", e.ID, err)
			}
			if _, err := g.AddEdge(segment(e, edgeIDs, prevID, id, seg)); err != nil {
				return fmt.Errorf("subdivide %s: %w", e.ID, err)
			}
			prevID = id
			seg++
		}
		if _, err := g.AddEdge(segment(e, edgeIDs, prevID, dst.ID, seg)); err != nil {
			return fmt.Errorf("subdivide %s: %w", e.ID, err)
		}
	}
	return nil
}

func segment(orig dag.Edge, ids *idGen, from, to string, n int) dag.Edge {
	meta := dag.Metadata{MetaOriginalEdge: orig.ID}
	for k, v := range orig.Meta {
		if k != MetaOriginalEdge {
			meta[k] = v
		}
	}
	return dag.Edge{ID: ids.next(fmt.Sprintf("%s#%d", orig.ID, n)), From: from, To: to, Meta: meta}
}

func edgeIDs(edges []dag.Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

// idGen hands out IDs that are unique among the seeded ones and every ID it
// returned before.
type idGen struct {
	used map[string]struct{}
}

func newIDGen(seed []string) *idGen {
	m := make(map[string]struct{}, len(seed)*2)
	for _, id := range seed {
		m[id] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string) string {
	id := base
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", base, i)
	}
}
