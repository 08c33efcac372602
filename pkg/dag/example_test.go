package dag_test

import (
	"fmt"

	"github.com/matzehuels/erchart/pkg/dag"
)

func ExampleDAG_basic() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "products", Row: 0})
	_ = g.AddNode(dag.Node{ID: "suppliers", Row: 1})
	_ = g.AddNode(dag.Node{ID: "regions", Row: 2})
	_, _ = g.AddEdge(dag.Edge{From: "products", To: "suppliers"})
	_, _ = g.AddEdge(dag.Edge{From: "suppliers", To: "regions"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", g.RowCount())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Rows: 3
}

func ExampleDAG_parallelEdges() {
	// An order references the same customer twice: buyer and recipient.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "orders"})
	_ = g.AddNode(dag.Node{ID: "customers"})
	buyer, _ := g.AddEdge(dag.Edge{ID: "orders.buyer", From: "orders", To: "customers"})
	_, _ = g.AddEdge(dag.Edge{ID: "orders.recipient", From: "orders", To: "customers"})

	fmt.Println("Children of orders:", g.Children("orders"))
	g.RemoveEdge(buyer)
	fmt.Println("After removing", buyer+":", g.Children("orders"))
	// Output:
	// Children of orders: [customers customers]
	// After removing orders.buyer: [customers]
}

func ExampleDAG_Sources() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "orders"})
	_ = g.AddNode(dag.Node{ID: "reviews"})
	_ = g.AddNode(dag.Node{ID: "products"})
	_, _ = g.AddEdge(dag.Edge{From: "orders", To: "products"})
	_, _ = g.AddEdge(dag.Edge{From: "reviews", To: "products"})

	fmt.Println("Sources:", dag.NodeIDs(g.Sources()))
	// Output:
	// Sources: [orders reviews]
}

func ExampleCountLayerCrossings() {
	g := dag.New(nil)
	for _, id := range []string{"a", "b", "x", "y"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_, _ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_, _ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println(dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}))
	fmt.Println(dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"y", "x"}))
	// Output:
	// 1
	// 0
}
