// Package render hands positioned entity-relationship diagrams to a drawing
// surface.
//
// # Overview
//
// A [Surface] is the small widget contract a drawing backend implements:
// node widgets with named ports, links between port anchors, labels and a
// final repaint. [Present] maps an [erd.Diagram] whose nodes were placed by
// the layout engine onto such a surface 1:1, so the same diagram can be shown
// by different backends without re-running layout.
//
//	res, err := layout.Layout(diagram, layout.Options{})
//	scene := render.NewScene()
//	err = render.Present(ctx, scene, diagram, res)
//
// # Surfaces
//
// Two surfaces are provided:
//
//   - [Scene] keeps the widget model in memory and serializes it to JSON for
//     browser clients; its OnRepaint hook fires after every repaint.
//   - [nodelink.Surface] writes Graphviz DOT with every node pinned and draws
//     it to SVG or PNG.
//
// # Format Conversion
//
// [ToPDF] converts an SVG to PDF using the external rsvg-convert tool (from
// librsvg). It returns an UNSUPPORTED error when the tool is not installed.
//
// [erd.Diagram]: github.com/matzehuels/erchart/pkg/erd.Diagram
// [nodelink.Surface]: github.com/matzehuels/erchart/pkg/render/nodelink.Surface
package render
