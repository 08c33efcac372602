package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/graph"
	"github.com/matzehuels/erchart/pkg/layout"
)

type inspectOpts struct {
	layoutFile string
	plain      bool
	layout     layoutFlags
	source     sourceFlags
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [schema.json|schema.yaml|url]",
		Short: "Browse entities, ports and relations",
		Long: `Browse a laid out schema in the terminal.

Entities are listed in layout order with their rank and relation counts. The
detail pane shows the ports of the selected entity, its outgoing and incoming
relations, and relations that were broken to keep the layout acyclic.

With --layout, a layout document written by 'erchart render -f json' is
loaded instead of the schema. With --plain, or when stdout is not a
terminal, a table is printed instead of starting the browser.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, res, err := c.loadForInspect(cmd, args, &opts)
			if err != nil {
				return err
			}
			m := NewEntityBrowser(d, res)
			if opts.plain || !isTerminal(cmd.OutOrStdout()) {
				return printEntityTable(cmd.OutOrStdout(), m)
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&opts.layoutFile, "layout", "", "read a layout document (- for stdin) instead of the schema")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print a table instead of the interactive browser")
	addLayoutFlags(cmd, &opts.layout)
	addSourceFlags(cmd, &opts.source)

	return cmd
}

// loadForInspect returns the laid out diagram, either from a layout document
// or by running the pipeline up to the layout stage.
func (c *CLI) loadForInspect(cmd *cobra.Command, args []string, opts *inspectOpts) (*erd.Diagram, *layout.Result, error) {
	if opts.layoutFile != "" {
		var (
			doc graph.Layout
			err error
		)
		if opts.layoutFile == "-" {
			doc, err = graph.ReadLayout(cmd.InOrStdin())
		} else {
			doc, err = graph.ReadLayoutFile(opts.layoutFile)
		}
		if err != nil {
			return nil, nil, err
		}
		return graph.Import(doc, erd.BuildOptions{Logger: c.Logger})
	}

	if err := c.applySourceArgs(cmd, args, &opts.source); err != nil {
		return nil, nil, err
	}
	c.applyLayoutFlags(cmd, &opts.layout)
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src, closeSrc, err := c.openSource(ctx, runner.Cache, opts.source.refresh)
	if err != nil {
		return nil, nil, err
	}
	defer closeSrc()

	popts := c.pipelineOptions()
	popts.Source = src
	popts.Refresh = opts.source.refresh
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	res, err := runner.Load(ctx, popts)
	if err != nil {
		return nil, nil, err
	}
	if err := runner.ComputeLayout(ctx, res, popts); err != nil {
		return nil, nil, err
	}
	for _, w := range res.Warnings {
		c.Logger.Warn(w.Message, "code", w.Code, "entity", w.Entity, "attribute", w.Attribute)
	}
	return res.Diagram, res.Layout, nil
}

// printEntityTable writes the browser's entity list with relation targets.
func printEntityTable(w io.Writer, m EntityBrowser) error {
	rows := make([][]string, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		targets := ""
		for i, e := range m.outgoing[n.ID] {
			if i > 0 {
				targets += ", "
			}
			targets += e.SourcePort + "→" + e.Target
		}
		rows = append(rows, []string{
			n.ID,
			n.Title,
			m.rank(n.ID),
			strconv.Itoa(len(n.Entity.Attributes)),
			strconv.Itoa(len(m.incoming[n.ID])),
			targets,
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Entity", "Rank", "Attrs", "In", "Relations").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
