package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erchart/pkg/pipeline"
	"github.com/matzehuels/erchart/pkg/render"
)

// defaultOutput is the base name of rendered files when -o is not given.
const defaultOutput = "erchart"

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output  string
	formats []string
	layout  layoutFlags
	source  sourceFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [schema.json|schema.yaml|url]",
		Short: "Render the entity relationship diagram to files",
		Long: `Render the entity relationship diagram of a schema.

The schema is read from the file or URL given as argument, or from the
[source] section of the config file. Entities become boxes with one row per
attribute; every relation attribute is drawn as a link from its row to the
target entity's header.

Output formats: svg (default), png, pdf, dot, json. The json format is the
layout document that 'erchart inspect --layout' and other tools can read.

Layouts and rendered files are cached; use --refresh to recompute.`,
		Example: `  erchart render schema.json
  erchart render schema.yaml -f svg,png -o docs/model
  erchart render https://cms.example.com/er-chart/er-data --select .data --rankdir LR`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applySourceArgs(cmd, args, &opts.source); err != nil {
				return err
			}
			c.applyLayoutFlags(cmd, &opts.layout)
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path or base path (default: erchart.<format>)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{pipeline.DefaultFormat}, "output formats: svg, png, pdf, dot, json")
	addLayoutFlags(cmd, &opts.layout)
	addSourceFlags(cmd, &opts.source)

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, stdout, stderr io.Writer, opts renderOpts) error {
	formats := normalizeFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src, closeSrc, err := c.openSource(ctx, runner.Cache, opts.source.refresh)
	if err != nil {
		return err
	}
	defer closeSrc()

	popts := c.pipelineOptions()
	popts.Source = src
	popts.Formats = formats
	popts.Refresh = opts.source.refresh

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, stderr, "Rendering "+src.Name()+"...")
	spinner.Start()
	res, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(opts.output, formats, res.Artifacts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d files", len(paths)))

	printSuccess(stdout, "Rendered %s", src.Name())
	for _, p := range paths {
		printFile(stdout, p)
	}
	printStats(stdout, res.Stats.NodeCount, res.Stats.EdgeCount, res.Layout.Crossings, res.CacheInfo.LayoutHit)
	printWarnings(stdout, res.Warnings)
	fmt.Fprintln(stdout)
	printNextStep(stdout, "Browse", "erchart inspect "+sourceArg(c.config.Source))
	return nil
}

// normalizeFormats lowercases and trims the requested formats and drops
// duplicates, keeping the first occurrence.
func normalizeFormats(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// outputPaths maps formats to file paths. A single format with an explicit
// output path writes exactly there; otherwise output is a base path and each
// format adds its extension.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 && filepath.Ext(output) != "" && !render.ValidFormat(strings.TrimPrefix(filepath.Ext(output), ".")) {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = defaultOutput
	}
	if ext := strings.TrimPrefix(filepath.Ext(base), "."); render.ValidFormat(ext) {
		if len(formats) == 1 && ext == formats[0] {
			paths[formats[0]] = base
			return paths
		}
		base = strings.TrimSuffix(base, "."+ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// writeArtifacts writes the rendered outputs and returns the paths in
// format order.
func writeArtifacts(output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	paths := outputPaths(output, formats)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return written, fmt.Errorf("no %s output was rendered", f)
		}
		p := paths[f]
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// sourceArg renders the configured source back into a command argument.
func sourceArg(s SourceConfig) string {
	switch {
	case s.URL != "":
		return s.URL
	case s.Path != "":
		return s.Path
	default:
		return ""
	}
}
