package dag

import (
	"errors"
	"testing"
)

func TestAddNode_Errors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})

	tests := []struct {
		name    string
		edge    Edge
		wantID  string
		wantErr error
	}{
		{"generated id", Edge{From: "a", To: "b"}, "e0", nil},
		{"explicit id", Edge{ID: "ab", From: "a", To: "b"}, "ab", nil},
		{"second generated id", Edge{From: "a", To: "b"}, "e1", nil},
		{"duplicate id", Edge{ID: "ab", From: "b", To: "a"}, "", ErrDuplicateEdgeID},
		{"unknown source", Edge{From: "x", To: "b"}, "", ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, "", ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := g.AddEdge(tt.edge)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
			if id != tt.wantID {
				t.Errorf("AddEdge() id = %q, want %q", id, tt.wantID)
			}
		})
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if got := g.OutDegree("a"); got != 3 {
		t.Errorf("OutDegree(a) = %d, want 3", got)
	}
}

func TestRemoveEdge_ByID(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{ID: "x", From: "a", To: "b"})
	g.AddEdge(Edge{ID: "y", From: "a", To: "b"})

	if !g.RemoveEdge("x") {
		t.Fatal("RemoveEdge(x) = false")
	}
	if g.RemoveEdge("x") {
		t.Error("RemoveEdge(x) twice = true")
	}
	if _, ok := g.Edge("y"); !ok {
		t.Error("parallel edge y removed")
	}
	if g.InDegree("b") != 1 || g.OutDegree("a") != 1 {
		t.Errorf("degrees = in %d out %d, want 1 1", g.InDegree("b"), g.OutDegree("a"))
	}
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New(nil)
	ids := []string{"zeta", "alpha", "mu", "beta", "omega"}
	for _, id := range ids {
		g.AddNode(Node{ID: id})
	}
	for i := 0; i < 10; i++ {
		got := NodeIDs(g.Nodes())
		for j := range ids {
			if got[j] != ids[j] {
				t.Fatalf("Nodes() = %v, want %v", got, ids)
			}
		}
	}

	g.SetRows(map[string]int{"alpha": 1, "beta": 1})
	if got := NodeIDs(g.NodesInRow(1)); len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("NodesInRow(1) = %v, want [alpha beta]", got)
	}
	if got := g.RowIDs(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("RowIDs() = %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		rows  map[string]int
		edges [][2]string
		want  error
	}{
		{"valid", map[string]int{"a": 0, "b": 1}, [][2]string{{"a", "b"}}, nil},
		{"long edge", map[string]int{"a": 0, "b": 2}, [][2]string{{"a", "b"}}, ErrNonConsecutiveRows},
		{"cycle", map[string]int{"a": 0, "b": 1}, [][2]string{{"a", "b"}, {"b", "a"}}, ErrNonConsecutiveRows},
		{"self loop", map[string]int{"a": 0}, [][2]string{{"a", "a"}}, ErrNonConsecutiveRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			for id, row := range tt.rows {
				g.AddNode(Node{ID: id, Row: row})
			}
			for _, e := range tt.edges {
				g.AddEdge(Edge{From: e[0], To: e[1]})
			}
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectCycles(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddNode(Node{ID: "c"})
	g.AddEdge(Edge{From: "a", To: "b"})
	g.AddEdge(Edge{From: "b", To: "c"})
	if err := g.detectCycles(); err != nil {
		t.Fatalf("detectCycles() = %v on acyclic graph", err)
	}
	g.AddEdge(Edge{From: "c", To: "a"})
	if err := g.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("detectCycles() = %v, want ErrGraphHasCycle", err)
	}
}

func TestCountCrossings(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c", "x", "y", "z"} {
		g.AddNode(Node{ID: id})
	}
	g.AddEdge(Edge{From: "a", To: "z"})
	g.AddEdge(Edge{From: "b", To: "y"})
	g.AddEdge(Edge{From: "c", To: "x"})

	orders := map[int][]string{0: {"a", "b", "c"}, 1: {"x", "y", "z"}}
	if got := CountCrossings(g, orders); got != 3 {
		t.Errorf("CountCrossings() = %d, want 3", got)
	}
	orders[1] = []string{"z", "y", "x"}
	if got := CountCrossings(g, orders); got != 0 {
		t.Errorf("CountCrossings() = %d, want 0", got)
	}
}

func TestCountPairCrossingsWithPos(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "x", "y"} {
		g.AddNode(Node{ID: id})
	}
	g.AddEdge(Edge{From: "a", To: "y"})
	g.AddEdge(Edge{From: "b", To: "x"})
	pos := PosMap([]string{"x", "y"})

	if got := CountPairCrossingsWithPos(g, "a", "b", pos, false); got != 1 {
		t.Errorf("(a,b) = %d, want 1", got)
	}
	if got := CountPairCrossingsWithPos(g, "b", "a", pos, false); got != 0 {
		t.Errorf("(b,a) = %d, want 0", got)
	}
	upper := PosMap([]string{"a", "b"})
	if got := CountPairCrossingsWithPos(g, "x", "y", upper, true); got != 1 {
		t.Errorf("parents (x,y) = %d, want 1", got)
	}
}
