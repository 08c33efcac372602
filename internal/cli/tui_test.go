package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/layout"
	"github.com/matzehuels/erchart/pkg/schema"
)

func browserFixture(t *testing.T) EntityBrowser {
	t.Helper()
	records := []schema.Record{
		schema.NewRecord("products", "Products",
			schema.Scalar("title", "string"),
			schema.Relation("supplier", "api::supplier.suppliers", "manyToOne", "products"),
		),
		schema.NewRecord("suppliers", "Suppliers",
			schema.Relation("products", "api::product.products", "oneToMany", ""),
		),
		schema.NewRecord("tags", "Tags", schema.Scalar("label", "string")),
	}
	entities, _ := schema.Normalize(records, schema.NormalizeOptions{})
	d, _ := erd.Build(entities, erd.BuildOptions{})
	res, err := layout.Layout(d, layout.Options{})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return NewEntityBrowser(d, res)
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestEntityBrowser_Order(t *testing.T) {
	m := browserFixture(t)
	if len(m.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(m.Nodes))
	}
	seen := map[string]bool{}
	prev := -1
	for _, n := range m.Nodes {
		seen[n.ID] = true
		r := m.Layout.Ranks[n.ID]
		if r < prev {
			t.Errorf("node %s rank %d listed after rank %d", n.ID, r, prev)
		}
		prev = r
	}
	for _, id := range []string{"products", "suppliers", "tags"} {
		if !seen[id] {
			t.Errorf("node %s missing", id)
		}
	}
}

func TestEntityBrowser_Navigation(t *testing.T) {
	m := browserFixture(t)

	got := press(m, "down", "down", "down", "down").(EntityBrowser)
	if got.Cursor != 2 {
		t.Errorf("cursor after 4× down = %d, want 2 (clamped)", got.Cursor)
	}
	got = press(got, "up", "g").(EntityBrowser)
	if got.Cursor != 0 {
		t.Errorf("cursor after g = %d, want 0", got.Cursor)
	}
	got = press(got, "G").(EntityBrowser)
	if got.Cursor != 2 {
		t.Errorf("cursor after G = %d, want 2", got.Cursor)
	}
}

func TestEntityBrowser_Follow(t *testing.T) {
	m := browserFixture(t)
	for m.Selected().ID != "products" {
		m = press(m, "down").(EntityBrowser)
	}
	m = press(m, "enter").(EntityBrowser)
	if id := m.Selected().ID; id != "suppliers" {
		t.Errorf("follow from products selected %s, want suppliers", id)
	}
}

func TestEntityBrowser_Quit(t *testing.T) {
	_, cmd := browserFixture(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestEntityBrowser_View(t *testing.T) {
	m := browserFixture(t)
	for m.Selected().ID != "products" {
		m = press(m, "down").(EntityBrowser)
	}
	view := m.View()
	for _, want := range []string{"Entities", "Products", "Ports", "title", "supplier", "→ suppliers", "Outgoing", "Incoming", "products.supplier → suppliers"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if len(m.Layout.Broken) != 1 {
		t.Fatalf("expected one broken edge, got %v", m.Layout.Broken)
	}
	if !strings.Contains(view, "(cycle)") {
		t.Error("broken relation not marked")
	}
}

func TestEntityBrowser_Empty(t *testing.T) {
	m := NewEntityBrowser(&erd.Diagram{Ports: erd.NewPortIndex()}, nil)
	if m.Selected() != nil {
		t.Error("empty browser has a selection")
	}
	if !strings.Contains(m.View(), "no entities") {
		t.Error("empty view should say so")
	}
	m = press(m, "down", "enter").(EntityBrowser)
	if m.Cursor != 0 {
		t.Errorf("cursor moved in empty browser: %d", m.Cursor)
	}
}
