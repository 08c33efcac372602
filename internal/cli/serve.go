package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/erchart/internal/server"
	"github.com/matzehuels/erchart/pkg/observability"
	"github.com/matzehuels/erchart/pkg/pipeline"
)

// defaultAddr is the listen address of erchart serve.
const defaultAddr = ":8080"

type serveOpts struct {
	addr   string
	watch  bool
	layout layoutFlags
	source sourceFlags
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [schema.json|schema.yaml|url]",
		Short: "Serve the diagram page, JSON endpoints and live repaints",
		Long: `Serve the entity relationship diagram over HTTP.

Every visit to / loads the schema, lays it out and shows the chart, or the
error that stopped the load. Connected browsers repaint over a websocket
when a newer load completes. With --watch, local schema files are reloaded
as they change.

Prometheus metrics are exposed at /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applySourceArgs(cmd, args, &opts.source); err != nil {
				return err
			}
			c.applyLayoutFlags(cmd, &opts.layout)
			if cmd.Flags().Changed("addr") || c.config.Server.Addr == "" {
				c.config.Server.Addr = opts.addr
			}
			if cmd.Flags().Changed("watch") {
				c.config.Server.Watch = opts.watch
			}
			return c.runServe(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload when the schema file changes")
	addLayoutFlags(cmd, &opts.layout)
	addSourceFlags(cmd, &opts.source)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, stdout io.Writer, opts serveOpts) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

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
	popts.Formats = []string{pipeline.DefaultFormat}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	srv := server.New(server.Config{
		Loader:   pipeline.NewLoader(runner, popts),
		Gatherer: reg,
		Logger:   c.Logger,
	})

	addr := c.config.Server.Addr
	printSuccess(stdout, "Serving %s", src.Name())
	printKeyValue(stdout, "page", StyleLink.Render("http://"+displayAddr(addr)+"/"))
	printKeyValue(stdout, "metrics", StyleLink.Render("http://"+displayAddr(addr)+"/metrics"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx, addr) })

	if files := c.sourcePaths(); c.config.Server.Watch && len(files) > 0 {
		printKeyValue(stdout, "watching", files[0])
		g.Go(func() error {
			return server.Watch(ctx, files, server.DefaultDebounce, c.Logger, func(ctx context.Context) {
				if err := srv.Reload(ctx); err != nil {
					c.Logger.Error("reload failed", "error", err)
				}
			})
		})
	} else if c.config.Server.Watch {
		printWarning(stdout, "--watch only applies to local schema files")
	}

	return g.Wait()
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
