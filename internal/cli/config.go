package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/erchart/pkg/errors"
)

// DefaultConfigFile is read when present and --config is not given.
const DefaultConfigFile = "erchart.toml"

// Config is the TOML configuration file:
//
//	[source]
//	kind = "http"
//	url = "https://cms.example.com/er-chart/er-data"
//	select = ".data"
//
//	[layout]
//	rankdir = "LR"
//
//	[view]
//	filter = "relations > 0"
type Config struct {
	Source SourceConfig `toml:"source"`
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	View   ViewConfig   `toml:"view"`
	Server ServerConfig `toml:"server"`
}

// SourceConfig selects and configures the schema provider.
type SourceConfig struct {
	// Kind is file, http, sql or mongo. Empty means file, or http when URL
	// is set.
	Kind string `toml:"kind"`

	// file
	Path string `toml:"path"`

	// http
	URL     string `toml:"url"`
	Token   string `toml:"token"`
	Timeout string `toml:"timeout"`

	// Select is a jq expression picking the records out of file and http
	// documents.
	Select string `toml:"select"`

	// sql
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
	Table  string `toml:"table"`
	Prefix string `toml:"prefix"`

	// mongo
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// LayoutConfig mirrors the pipeline layout options. Zero values take the
// pipeline defaults.
type LayoutConfig struct {
	RankDir string  `toml:"rankdir"`
	RankSep float64 `toml:"ranksep"`
	NodeSep float64 `toml:"nodesep"`
	MarginX float64 `toml:"marginx"`
	MarginY float64 `toml:"marginy"`
	Passes  int     `toml:"passes"`
}

// CacheConfig configures the layout, artifact and schema cache.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	// TTL applies to cached schema fetches, e.g. "10m".
	TTL      string `toml:"ttl"`
	Disabled bool   `toml:"disabled"`

	// Namespace prefixes every key, so that several projects can share one
	// Redis instance.
	Namespace string `toml:"namespace"`
}

// ViewConfig narrows the diagram to a subset of entities.
type ViewConfig struct {
	Filter string `toml:"filter"`
}

// ServerConfig configures erchart serve.
type ServerConfig struct {
	Addr  string `toml:"addr"`
	Watch bool   `toml:"watch"`
}

// LoadConfig reads path. A missing file is only an error when the path was
// given explicitly. Unknown keys are logged and ignored.
func LoadConfig(path string, explicit bool, logger *log.Logger) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	path = expandHome(path)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("unknown config key", "file", path, "key", key.String())
	}
	logger.Debug("loaded config", "file", path)
	return cfg, nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// =============================================================================
// Shared Flags
// =============================================================================

// layoutFlags holds the layout and view flags shared by render, serve and
// inspect. Only flags set on the command line override the config.
type layoutFlags struct {
	rankDir string
	rankSep float64
	nodeSep float64
	marginX float64
	marginY float64
	passes  int
	filter  string
}

func addLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	cmd.Flags().StringVar(&f.rankDir, "rankdir", "", "rank direction: TB, BT, LR, RL (default RL)")
	cmd.Flags().Float64Var(&f.rankSep, "ranksep", 0, "gap between ranks (default 50)")
	cmd.Flags().Float64Var(&f.nodeSep, "nodesep", 0, "gap between nodes of one rank (default 50)")
	cmd.Flags().Float64Var(&f.marginX, "marginx", 0, "horizontal margin (default 25)")
	cmd.Flags().Float64Var(&f.marginY, "marginy", 0, "vertical margin (default 25)")
	cmd.Flags().IntVar(&f.passes, "passes", 0, "crossing reduction passes (default 4)")
	cmd.Flags().StringVar(&f.filter, "filter", "", `view filter expression, e.g. 'relations > 0'`)
}

func (c *CLI) applyLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	set := cmd.Flags().Changed
	l := &c.config.Layout
	if set("rankdir") {
		l.RankDir = f.rankDir
	}
	if set("ranksep") {
		l.RankSep = f.rankSep
	}
	if set("nodesep") {
		l.NodeSep = f.nodeSep
	}
	if set("marginx") {
		l.MarginX = f.marginX
	}
	if set("marginy") {
		l.MarginY = f.marginY
	}
	if set("passes") {
		l.Passes = f.passes
	}
	if set("filter") {
		c.config.View.Filter = f.filter
	}
}

// sourceFlags holds the schema source flags.
type sourceFlags struct {
	selectExpr string
	noCache    bool
	refresh    bool
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringVar(&f.selectExpr, "select", "", "jq expression selecting the records in the source document")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results but store fresh ones")
}

// applySourceArgs lets a positional argument name the source: an http(s)
// URL or a file path ("-" for stdin).
func (c *CLI) applySourceArgs(cmd *cobra.Command, args []string, f *sourceFlags) error {
	s := &c.config.Source
	if len(args) > 0 {
		arg := args[0]
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			*s = SourceConfig{Kind: sourceHTTP, URL: arg, Token: s.Token, Timeout: s.Timeout}
		} else {
			*s = SourceConfig{Kind: sourceFile, Path: arg}
		}
	}
	if cmd.Flags().Changed("select") {
		s.Select = f.selectExpr
	}
	if f.noCache {
		c.config.Cache.Disabled = true
	}
	if s.Kind == "" && s.Path == "" && s.URL == "" && s.DSN == "" && s.URI == "" {
		return fmt.Errorf("no schema source: pass a file or URL, or configure [source] in %s", DefaultConfigFile)
	}
	return nil
}
