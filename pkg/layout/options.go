package layout

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/layout/ordering"
)

// RankDir is the direction edges flow in: from lower ranks to higher ranks.
type RankDir string

const (
	TopBottom RankDir = "TB"
	BottomTop RankDir = "BT"
	LeftRight RankDir = "LR"
	RightLeft RankDir = "RL"
)

// RankDirs lists the accepted rank directions.
var RankDirs = []RankDir{TopBottom, BottomTop, LeftRight, RightLeft}

// ParseRankDir accepts TB, BT, LR and RL in any case.
func ParseRankDir(s string) (RankDir, error) {
	d := RankDir(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range RankDirs {
		if d == v {
			return d, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidRankDir, "unknown rank direction %q (want TB, BT, LR or RL)", s)
}

// Horizontal reports whether ranks are laid out along the x axis.
func (d RankDir) Horizontal() bool { return d == LeftRight || d == RightLeft }

// Reversed reports whether rank 0 is at the far end of the rank axis.
func (d RankDir) Reversed() bool { return d == BottomTop || d == RightLeft }

// Defaults.
const (
	DefaultRankDir = RightLeft
	DefaultRankSep = 50.0
	DefaultNodeSep = 50.0
	DefaultMargin  = 25.0
	DefaultPasses  = ordering.DefaultPasses
)

// Options configures [Layout]. Zero fields take their defaults.
type Options struct {
	RankDir RankDir
	// RankSep is the gap between adjacent ranks.
	RankSep float64
	// NodeSep is the gap between adjacent nodes of one rank.
	NodeSep float64
	MarginX float64
	MarginY float64
	// Passes is the number of crossing-reduction sweep pairs.
	Passes int
	// Logger receives DEBUG lines per stage. A nil Logger discards output.
	Logger *log.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		RankDir: DefaultRankDir,
		RankSep: DefaultRankSep,
		NodeSep: DefaultNodeSep,
		MarginX: DefaultMargin,
		MarginY: DefaultMargin,
		Passes:  DefaultPasses,
	}
}

// WithDefaults fills zero fields and canonicalizes the rank direction, so
// "lr" behaves like LR. An unknown direction is left for [Options.Validate].
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.RankDir == "" {
		o.RankDir = d.RankDir
	} else if dir, err := ParseRankDir(string(o.RankDir)); err == nil {
		o.RankDir = dir
	}
	if o.RankSep == 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = d.NodeSep
	}
	if o.MarginX == 0 {
		o.MarginX = d.MarginX
	}
	if o.MarginY == 0 {
		o.MarginY = d.MarginY
	}
	if o.Passes == 0 {
		o.Passes = d.Passes
	}
	return o
}

// Validate rejects unknown directions and negative spacing.
func (o Options) Validate() error {
	if o.RankDir != "" {
		if _, err := ParseRankDir(string(o.RankDir)); err != nil {
			return err
		}
	}
	spacing := []struct {
		name string
		v    float64
	}{{"ranksep", o.RankSep}, {"nodesep", o.NodeSep}, {"margin-x", o.MarginX}, {"margin-y", o.MarginY}}
	for _, s := range spacing {
		if s.v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative, got %v", s.name, s.v)
		}
	}
	return nil
}
