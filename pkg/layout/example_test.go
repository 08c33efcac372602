package layout_test

import (
	"fmt"

	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/layout"
	"github.com/matzehuels/erchart/pkg/schema"
)

func ExampleLayout() {
	entities, _ := schema.Normalize([]schema.Record{
		schema.NewRecord("products", "Products",
			schema.Relation("supplier", "api::suppliers.suppliers", "manyToOne", ""),
			schema.Relation("category", "api::categories.categories", "manyToOne", ""),
		),
		schema.NewRecord("suppliers", "Suppliers"),
		schema.NewRecord("categories", "Categories"),
	}, schema.NormalizeOptions{})
	d, _ := erd.Build(entities, erd.BuildOptions{})

	res, err := layout.Layout(d, layout.Options{RankDir: layout.TopBottom})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("Order:", res.Order)
	for _, n := range d.Nodes {
		x, y, _ := n.Position()
		fmt.Printf("%s: rank %d at (%.1f, %.1f)\n", n.ID, res.Ranks[n.ID], x, y)
	}
	// Output:
	// Order: [[products] [suppliers categories]]
	// products: rank 0 at (126.5, 25.0)
	// suppliers: rank 1 at (25.0, 155.0)
	// categories: rank 1 at (235.0, 155.0)
}
