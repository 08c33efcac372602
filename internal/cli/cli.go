// Package cli implements the erchart command-line interface.
//
// The CLI renders entity relationship diagrams from a content model schema,
// serves them over HTTP and lets you browse a schema in the terminal. It is
// built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
//   - render: write SVG, PNG, PDF, DOT or JSON files
//   - serve: host the diagram page, JSON endpoints and live repaints
//   - inspect: browse entities, ports and relations interactively
//   - cache: clear or locate the layout and artifact cache
//
// # Configuration
//
// Settings come from an optional TOML file (--config, or ./erchart.toml when
// present). Flags override the file, and the file overrides the pipeline
// defaults.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/erchart/pkg/buildinfo"
	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "erchart"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "erchart draws entity relationship diagrams of content models",
		Long:         `erchart reads a content model schema (entities, their attributes and the relations between them) and draws it as a layered entity relationship diagram with field-level connections.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath, cmd.Flags().Changed("config"), c.Logger)
			if err != nil {
				return err
			}
			c.config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", DefaultConfigFile, "config file (TOML)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The returned runner owns
// the cache; Close it when done.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, c.keyer(), c.Logger), nil
}

// openCache returns the configured cache: disabled, Redis or the file cache.
// Every backend is instrumented so that cache hooks fire.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	cc := c.config.Cache
	if cc.Disabled {
		return cache.NewNullCache(), nil
	}
	if cc.RedisURL != "" {
		rc, err := cache.OpenRedis(ctx, cc.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Instrument(fc), nil
}

// keyer returns the cache keyer, scoped when a namespace is configured.
func (c *CLI) keyer() cache.Keyer {
	if ns := c.config.Cache.Namespace; ns != "" {
		return cache.NewScopedKeyer(nil, ns+":")
	}
	return cache.NewDefaultKeyer()
}

// cacheDir returns the configured cache directory, defaulting to the XDG
// location (~/.cache/erchart/).
func (c *CLI) cacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return expandHome(c.config.Cache.Dir), nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions builds pipeline options from the config. Flags are applied
// to the config before this is called.
func (c *CLI) pipelineOptions() pipeline.Options {
	l := c.config.Layout
	return pipeline.Options{
		Filter:  c.config.View.Filter,
		RankDir: l.RankDir,
		RankSep: l.RankSep,
		NodeSep: l.NodeSep,
		MarginX: l.MarginX,
		MarginY: l.MarginY,
		Passes:  l.Passes,
		Logger:  c.Logger,
	}
}

// schemaTTL returns the configured schema cache TTL.
func (c *CLI) schemaTTL() time.Duration {
	if d, err := time.ParseDuration(c.config.Cache.TTL); err == nil && d > 0 {
		return d
	}
	return cache.SchemaTTL
}
