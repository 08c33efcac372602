package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/layout"
)

var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	currentStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	relationStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// =============================================================================
// EntityBrowser - Interactive schema inspection
// =============================================================================

// EntityBrowser is the bubbletea model of erchart inspect. The left pane
// lists entities in layout order; the right pane shows the selected entity's
// ports and relations.
type EntityBrowser struct {
	Diagram *erd.Diagram
	Layout  *layout.Result
	Nodes   []*erd.Node
	Cursor  int
	Offset  int
	Height  int

	incoming map[string][]erd.Edge
	outgoing map[string][]erd.Edge
}

// NewEntityBrowser creates a browser over a laid out diagram. Nodes are
// listed by rank, then by their order inside the rank.
func NewEntityBrowser(d *erd.Diagram, res *layout.Result) EntityBrowser {
	m := EntityBrowser{
		Diagram:  d,
		Layout:   res,
		Nodes:    orderedNodes(d, res),
		Height:   15,
		incoming: make(map[string][]erd.Edge),
		outgoing: make(map[string][]erd.Edge),
	}
	for _, e := range d.Edges {
		m.outgoing[e.Source] = append(m.outgoing[e.Source], e)
		m.incoming[e.Target] = append(m.incoming[e.Target], e)
	}
	return m
}

func orderedNodes(d *erd.Diagram, res *layout.Result) []*erd.Node {
	nodes := make([]*erd.Node, 0, len(d.Nodes))
	if res == nil {
		return append(nodes, d.Nodes...)
	}
	seen := make(map[string]bool, len(d.Nodes))
	for _, rank := range res.Order {
		for _, id := range rank {
			if n, ok := d.Node(id); ok && !seen[id] {
				nodes = append(nodes, n)
				seen[id] = true
			}
		}
	}
	for _, n := range d.Nodes {
		if !seen[n.ID] {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Selected returns the node under the cursor.
func (m EntityBrowser) Selected() *erd.Node {
	if len(m.Nodes) == 0 {
		return nil
	}
	return m.Nodes[m.Cursor]
}

func (m EntityBrowser) Init() tea.Cmd {
	return nil
}

func (m EntityBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Nodes))
		case "end", "G":
			m.move(len(m.Nodes))
		case "enter", "right", "l":
			m.follow()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.clampOffset()
	}
	return m, nil
}

func (m *EntityBrowser) move(delta int) {
	if len(m.Nodes) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Nodes)-1)
	m.clampOffset()
}

func (m *EntityBrowser) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// follow jumps to the target of the selected entity's first relation.
func (m *EntityBrowser) follow() {
	n := m.Selected()
	if n == nil || len(m.outgoing[n.ID]) == 0 {
		return
	}
	target := m.outgoing[n.ID][0].Target
	for i, c := range m.Nodes {
		if c.ID == target {
			m.move(i - m.Cursor)
			return
		}
	}
}

func (m EntityBrowser) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Entities"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ follow relation  q quit"))
	b.WriteString("\n\n")

	if len(m.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  no entities"))
		return b.String()
	}

	list := m.listView()
	detail := detailBoxStyle.Render(m.detailView(m.Selected()))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))
	return b.String()
}

func (m EntityBrowser) listView() string {
	end := min(m.Offset+m.Height, len(m.Nodes))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			n.Title,
			strconv.Itoa(len(n.Entity.Attributes)),
			strconv.Itoa(len(m.outgoing[n.ID])),
			strconv.Itoa(len(m.incoming[n.ID])),
			m.rank(n.ID),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Entity", "Attrs", "Out", "In", "Rank").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return currentStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// detailView describes one entity: geometry, ports and relations.
func (m EntityBrowser) detailView(n *erd.Node) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(n.Title))
	if n.Title != n.ID {
		b.WriteString(" " + listDimStyle.Render("("+n.ID+")"))
	}
	b.WriteString("\n")

	if x, y, ok := n.Position(); ok {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("rank %s · at %.0f,%.0f · %.0f×%.0f", m.rank(n.ID), x, y, n.Width, n.Height)))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("unplaced · %.0f×%.0f", n.Width, n.Height)))
	}
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Ports"))
	b.WriteString("\n")
	for _, p := range m.Diagram.Ports.Ports(n.ID) {
		if p.Identity {
			b.WriteString(fmt.Sprintf("  %2d  %s\n", p.Index, listDimStyle.Render(p.Key.Name+" (identity)")))
			continue
		}
		a, _ := n.Entity.Attribute(p.Attribute)
		line := fmt.Sprintf("  %2d  %s %s", p.Index, a.Name, listDimStyle.Render(a.Type))
		if a.IsRelation() {
			line += " " + relationStyle.Render("→ "+a.Relation.TargetEntityID)
		}
		b.WriteString(line + "\n")
	}

	if out := m.outgoing[n.ID]; len(out) > 0 {
		b.WriteString("\n" + headerStyle.Render("Outgoing") + "\n")
		for _, e := range out {
			b.WriteString("  " + edgeLine(e, m.broken(e.ID)) + "\n")
		}
	}
	if in := m.incoming[n.ID]; len(in) > 0 {
		b.WriteString("\n" + headerStyle.Render("Incoming") + "\n")
		for _, e := range in {
			b.WriteString("  " + edgeLine(e, m.broken(e.ID)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func edgeLine(e erd.Edge, broken bool) string {
	s := fmt.Sprintf("%s.%s → %s", e.Source, e.SourcePort, e.Target)
	if e.Label != "" {
		s += " " + listDimStyle.Render("["+e.Label+"]")
	}
	if broken {
		s += " " + StyleWarning.Render("(cycle)")
	}
	return s
}

func (m EntityBrowser) rank(id string) string {
	if m.Layout == nil {
		return "—"
	}
	r, ok := m.Layout.Ranks[id]
	if !ok {
		return "—"
	}
	return strconv.Itoa(r)
}

func (m EntityBrowser) broken(edgeID string) bool {
	if m.Layout == nil {
		return false
	}
	return slices.Contains(m.Layout.Broken, edgeID)
}
