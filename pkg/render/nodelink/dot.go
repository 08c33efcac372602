package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/layout"
	"github.com/matzehuels/erchart/pkg/render"
)

// Options configures the DOT surface.
type Options struct {
	// RankDir decides on which side of a node edges leave and arrive.
	RankDir layout.RankDir
	// Width and Height are the canvas size; positions are flipped against
	// Height because Graphviz measures y upwards.
	Width  float64
	Height float64
}

// Surface is a [render.Surface] that writes Graphviz DOT with every node
// pinned at its computed position. Repaint finalizes the DOT source; [Surface.SVG]
// and [Surface.PNG] draw it with the neato engine, which keeps pinned nodes
// where they are and only routes the edges.
type Surface struct {
	opts  Options
	nodes []*dotNode
	links []*dotLink
	dot   string
}

// NewSurface returns an empty DOT surface.
func NewSurface(opts Options) *Surface {
	if opts.RankDir == "" {
		opts.RankDir = layout.DefaultRankDir
	}
	return &Surface{opts: opts}
}

type dotNode struct {
	spec render.NodeSpec
	x, y float64
}

type dotLink struct {
	id       string
	from, to string
	labels   []string
}

type dotPort struct {
	node *dotNode
	name string
	side erd.Side
}

// NewNode implements [render.Surface].
func (s *Surface) NewNode(spec render.NodeSpec) render.Node { return &dotNode{spec: spec} }

// AddAll implements [render.Surface]. It replaces previously added widgets.
func (s *Surface) AddAll(nodes []render.Node, links []render.Link) {
	s.nodes, s.links = nil, nil
	for _, n := range nodes {
		if dn, ok := n.(*dotNode); ok {
			s.nodes = append(s.nodes, dn)
		}
	}
	for _, l := range links {
		if dl, ok := l.(*dotLink); ok {
			s.links = append(s.links, dl)
		}
	}
}

// Repaint implements [render.Surface] by regenerating the DOT source.
func (s *Surface) Repaint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.dot = s.toDOT()
	return nil
}

// DOT returns the source produced by the last Repaint.
func (s *Surface) DOT() string { return s.dot }

func (n *dotNode) ID() string               { return n.spec.ID }
func (n *dotNode) Width() float64           { return n.spec.Width }
func (n *dotNode) Height() float64          { return n.spec.Height }
func (n *dotNode) SetPosition(x, y float64) { n.x, n.y = x, y }

func (n *dotNode) Port(name string, side erd.Side) render.Port {
	for _, p := range n.spec.Ports {
		if p.Name == name {
			return &dotPort{node: n, name: name, side: side}
		}
	}
	return nil
}

func (p *dotPort) Link(id string, to render.Port) render.Link {
	l := &dotLink{id: id, from: p.ref()}
	if t, ok := to.(*dotPort); ok {
		l.to = t.ref()
	}
	return l
}

func (l *dotLink) AddLabel(text string) { l.labels = append(l.labels, text) }

// ref is the DOT endpoint "node":"port":compass. The compass point is chosen
// later from the rank direction, so the ref stores the side only.
func (p *dotPort) ref() string {
	return fmt.Sprintf("%q:%q:%s", p.node.spec.ID, portID(p.name), p.side)
}

var compass = map[layout.RankDir][2]string{
	layout.TopBottom: {"n", "s"},
	layout.BottomTop: {"s", "n"},
	layout.LeftRight: {"w", "e"},
	layout.RightLeft: {"e", "w"},
}

func (s *Surface) endpoint(ref string) string {
	sides := compass[s.opts.RankDir]
	if strings.HasSuffix(ref, ":"+erd.Out.String()) {
		return strings.TrimSuffix(ref, erd.Out.String()) + sides[1]
	}
	return strings.TrimSuffix(ref, erd.In.String()) + sides[0]
}

func (s *Surface) toDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph ER {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=plain, fontname=\"Helvetica\", fontsize=11];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=9, arrowsize=0.7];\n\n")

	for _, n := range s.nodes {
		cx := n.x + n.spec.Width/2
		cy := s.opts.Height - (n.y + n.spec.Height/2)
		fmt.Fprintf(&buf, "  %q [pos=\"%s,%s!\", width=%s, height=%s, fixedsize=true, label=<%s>];\n",
			n.spec.ID, ftoa(cx), ftoa(cy), ftoa(n.spec.Width/72), ftoa(n.spec.Height/72), tableLabel(n.spec))
	}

	buf.WriteString("\n")
	for _, l := range s.links {
		attrs := []string{fmt.Sprintf("id=%q", l.id)}
		if len(l.labels) > 0 {
			attrs = append(attrs, fmt.Sprintf("label=%q", strings.Join(l.labels, "\n")))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", s.endpoint(l.from), s.endpoint(l.to), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// tableLabel renders the node as an HTML-like table with one row per port.
func tableLabel(spec render.NodeSpec) string {
	var b strings.Builder
	b.WriteString(`<table border="1" cellborder="0" cellspacing="0" cellpadding="3" bgcolor="white">`)
	identityInHeader := true
	for _, p := range spec.Ports {
		if p.Identity && p.Index > 0 {
			identityInHeader = false
		}
	}
	header := ""
	if identityInHeader {
		header = fmt.Sprintf(` port=%q`, portID(erd.IdentityPort))
	}
	fmt.Fprintf(&b, `<tr><td%s bgcolor="lightgrey"><b>%s</b></td></tr>`, header, html.EscapeString(spec.Title))
	for _, p := range spec.Ports {
		if p.Index == 0 {
			continue
		}
		fmt.Fprintf(&b, `<tr><td port=%q align="left">%s</td></tr>`, portID(p.Name), html.EscapeString(p.Label))
	}
	b.WriteString(`</table>`)
	return b.String()
}

var unsafePort = regexp.MustCompile(`[^A-Za-z0-9_]`)

// portID maps attribute names onto DOT-safe port identifiers.
func portID(name string) string { return "p_" + unsafePort.ReplaceAllString(name, "_") }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

// SVG draws the DOT source with neato.
func (s *Surface) SVG(ctx context.Context) ([]byte, error) {
	out, err := s.draw(ctx, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// PNG draws the DOT source with neato as a PNG image.
func (s *Surface) PNG(ctx context.Context) ([]byte, error) {
	return s.draw(ctx, graphviz.PNG)
}

func (s *Surface) draw(ctx context.Context, format graphviz.Format) ([]byte, error) {
	if s.dot == "" {
		return nil, fmt.Errorf("nodelink: surface was never repainted")
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(s.dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg element with one whose viewBox
// starts at the origin and whose size matches the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
