package transform_test

import (
	"fmt"

	"github.com/matzehuels/erchart/pkg/dag"
	"github.com/matzehuels/erchart/pkg/dag/transform"
)

func ExampleNormalize() {
	// orders → products → suppliers, orders → suppliers (long edge),
	// and suppliers → orders closing a cycle.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "orders"})
	_ = g.AddNode(dag.Node{ID: "products"})
	_ = g.AddNode(dag.Node{ID: "suppliers"})
	_, _ = g.AddEdge(dag.Edge{ID: "orders.product", From: "orders", To: "products"})
	_, _ = g.AddEdge(dag.Edge{ID: "products.supplier", From: "products", To: "suppliers"})
	_, _ = g.AddEdge(dag.Edge{ID: "orders.supplier", From: "orders", To: "suppliers"})
	_, _ = g.AddEdge(dag.Edge{ID: "suppliers.lastOrder", From: "suppliers", To: "orders"})

	res, _ := transform.Normalize(g)

	fmt.Println("Broken:", res.Broken)
	fmt.Println("Rows:", res.Rows)
	fmt.Println("Subdividers:", res.Subdividers)
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Broken: [suppliers.lastOrder]
	// Rows: 3
	// Subdividers: 1
	// Valid: true
}

func ExampleAssignLayers() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "products"})
	_ = g.AddNode(dag.Node{ID: "suppliers"})
	_ = g.AddNode(dag.Node{ID: "categories"})
	_ = g.AddNode(dag.Node{ID: "tags"})
	_, _ = g.AddEdge(dag.Edge{From: "products", To: "suppliers"})
	_, _ = g.AddEdge(dag.Edge{From: "products", To: "categories"})

	transform.AssignLayers(g)

	for _, n := range g.Nodes() {
		fmt.Printf("%s: row %d\n", n.ID, n.Row)
	}
	// Output:
	// products: row 0
	// suppliers: row 1
	// categories: row 1
	// tags: row 0
}

func ExampleSubdivide() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 3})
	_, _ = g.AddEdge(dag.Edge{ID: "ab", From: "a", To: "b"})

	_ = transform.Subdivide(g)

	for _, e := range g.Edges() {
		fmt.Println(e.From, "→", e.To)
	}
	// Output:
	// a → ab~1
	// ab~1 → ab~2
	// ab~2 → b
}

func ExampleBreakCycles() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_, _ = g.AddEdge(dag.Edge{ID: "ab", From: "a", To: "b"})
	_, _ = g.AddEdge(dag.Edge{ID: "ba", From: "b", To: "a"})

	fmt.Println("Removed:", transform.BreakCycles(g))
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// Removed: [ba]
	// Edges: 1
}
