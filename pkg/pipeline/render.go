package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/graph"
	"github.com/matzehuels/erchart/pkg/observability"
	"github.com/matzehuels/erchart/pkg/render"
	"github.com/matzehuels/erchart/pkg/render/nodelink"
)

// Present draws the positioned diagram onto a fresh scene and stores it in
// res.Scene. The scene is only stored once the repaint succeeded.
func (r *Runner) Present(ctx context.Context, res *Result) error {
	scene := render.NewScene()
	if err := render.Present(ctx, scene, res.Diagram, res.Layout); err != nil {
		return stageError("present", err)
	}
	res.Scene = scene
	return nil
}

// Render generates artifacts for opts.Formats and reports whether all of
// them came from the cache. Artifacts are keyed by the hash of the layout
// document, so any change in positions or labels renders afresh.
func (r *Runner) Render(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(res.Document)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderFormats(ctx, res, opts.Formats)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			opts.Logger.Warn("artifact cache write failed", "format", format, "error", err)
		}
	}
	return rendered, false, nil
}

// RenderFormats renders a positioned result without touching any cache.
// SVG, PNG and DOT come from one Graphviz surface; PDF is converted from the
// SVG; JSON is the layout document.
func RenderFormats(ctx context.Context, res *Result, formats []string) (map[string][]byte, error) {
	if res.Diagram == nil || res.Layout == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render: diagram has not been laid out")
	}

	var surface *nodelink.Surface
	dotSurface := func() (*nodelink.Surface, error) {
		if surface != nil {
			return surface, nil
		}
		s := nodelink.NewSurface(nodelink.Options{
			RankDir: res.Layout.RankDir,
			Width:   res.Layout.Width,
			Height:  res.Layout.Height,
		})
		if err := render.Present(ctx, s, res.Diagram, res.Layout); err != nil {
			return nil, err
		}
		surface = s
		return s, nil
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case render.FormatSVG, render.FormatPNG, render.FormatDOT, render.FormatPDF:
			var s *nodelink.Surface
			if s, err = dotSurface(); err != nil {
				break
			}
			switch format {
			case render.FormatDOT:
				data = []byte(s.DOT())
			case render.FormatPNG:
				data, err = s.PNG(ctx)
			case render.FormatSVG:
				data, err = s.SVG(ctx)
			case render.FormatPDF:
				var svg []byte
				if svg, err = svgOf(ctx, s, artifacts); err == nil {
					data, err = render.ToPDF(ctx, svg)
				}
			}
		case render.FormatJSON:
			data, err = graph.MarshalLayout(res.Document)
		default:
			err = errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, stageError("render "+format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOf(ctx context.Context, s *nodelink.Surface, done map[string][]byte) ([]byte, error) {
	if svg, ok := done[render.FormatSVG]; ok {
		return svg, nil
	}
	return s.SVG(ctx)
}
