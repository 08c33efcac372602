package ordering_test

import (
	"fmt"

	"github.com/matzehuels/erchart/pkg/dag"
	"github.com/matzehuels/erchart/pkg/layout/ordering"
)

func ExampleBarycentric() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "orders", Row: 0})
	_ = g.AddNode(dag.Node{ID: "customers", Row: 1})
	_ = g.AddNode(dag.Node{ID: "products", Row: 1})
	_ = g.AddNode(dag.Node{ID: "suppliers", Row: 2})
	_, _ = g.AddEdge(dag.Edge{From: "orders", To: "customers"})
	_, _ = g.AddEdge(dag.Edge{From: "orders", To: "products"})
	_, _ = g.AddEdge(dag.Edge{From: "products", To: "suppliers"})

	orders := ordering.Barycentric{}.OrderRows(g)

	fmt.Println("Row count:", len(orders))
	fmt.Println("Row 1:", orders[1])
	// Output:
	// Row count: 3
	// Row 1: [customers products]
}

func ExampleBarycentric_crossingMinimization() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddNode(dag.Node{ID: "x", Row: 1})
	_ = g.AddNode(dag.Node{ID: "y", Row: 1})
	_, _ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_, _ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println("Initial crossings:", dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}))

	orders := ordering.Barycentric{}.OrderRows(g)

	fmt.Println("After ordering:", dag.CountLayerCrossings(g, orders[0], orders[1]))
	// Output:
	// Initial crossings: 1
	// After ordering: 0
}

func Example_ordererInterface() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "orders", Row: 0})
	_ = g.AddNode(dag.Node{ID: "customers", Row: 1})
	_, _ = g.AddEdge(dag.Edge{From: "orders", To: "customers"})

	var orderer ordering.Orderer = ordering.Barycentric{Passes: 12}
	fmt.Println("Rows:", len(orderer.OrderRows(g)))
	// Output:
	// Rows: 2
}
