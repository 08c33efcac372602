package ordering

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/erchart/pkg/dag"
)

func ladder(n int) *dag.DAG {
	// Each top node connects to the bottom node in reversed position, the
	// worst possible initial order.
	g := dag.New(nil)
	for i := 0; i < n; i++ {
		g.AddNode(dag.Node{ID: fmt.Sprintf("t%d", i), Row: 0})
	}
	for i := 0; i < n; i++ {
		g.AddNode(dag.Node{ID: fmt.Sprintf("b%d", i), Row: 1})
	}
	for i := 0; i < n; i++ {
		g.AddEdge(dag.Edge{From: fmt.Sprintf("t%d", i), To: fmt.Sprintf("b%d", n-1-i)})
	}
	return g
}

func TestBarycentric_RemovesAvoidableCrossings(t *testing.T) {
	g := ladder(6)
	initial := map[int][]string{0: dag.NodeIDs(g.NodesInRow(0)), 1: dag.NodeIDs(g.NodesInRow(1))}
	if dag.CountCrossings(g, initial) == 0 {
		t.Fatal("test graph should start with crossings")
	}

	orders := Barycentric{}.OrderRows(g)

	if c := dag.CountCrossings(g, orders); c != 0 {
		t.Errorf("crossings = %d, want 0 (orders %v)", c, orders)
	}
}

func TestBarycentric_Deterministic(t *testing.T) {
	want := Barycentric{Passes: 6}.OrderRows(ladder(8))
	for i := 0; i < 20; i++ {
		got := Barycentric{Passes: 6}.OrderRows(ladder(8))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("run %d differs (-want +got):\n%s", i, diff)
		}
	}
}

func TestBarycentric_NeverWorseThanInitial(t *testing.T) {
	g := dag.New(nil)
	ids := []string{"a", "b", "c", "d", "e", "f"}
	for i, id := range ids {
		g.AddNode(dag.Node{ID: id, Row: i % 3})
	}
	g.AddEdge(dag.Edge{From: "a", To: "e"})
	g.AddEdge(dag.Edge{From: "d", To: "b"})
	g.AddEdge(dag.Edge{From: "b", To: "f"})
	g.AddEdge(dag.Edge{From: "e", To: "c"})
	g.AddEdge(dag.Edge{From: "a", To: "b"})
	g.AddEdge(dag.Edge{From: "d", To: "e"})

	initial := make(map[int][]string)
	for _, r := range g.RowIDs() {
		initial[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	orders := Barycentric{}.OrderRows(g)

	if got, was := dag.CountCrossings(g, orders), dag.CountCrossings(g, initial); got > was {
		t.Errorf("crossings = %d, initial %d", got, was)
	}
	for r, ids := range initial {
		if len(orders[r]) != len(ids) {
			t.Errorf("row %d has %d nodes, want %d", r, len(orders[r]), len(ids))
		}
	}
}

func TestBarycentric_NegativePassesKeepsInitialOrder(t *testing.T) {
	g := ladder(3)
	orders := Barycentric{Passes: -1}.OrderRows(g)
	if diff := cmp.Diff([]string{"b0", "b1", "b2"}, orders[1]); diff != "" {
		t.Errorf("row 1 (-want +got):\n%s", diff)
	}
}
