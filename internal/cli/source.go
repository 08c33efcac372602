package cli

import (
	"context"
	"time"

	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/source"
	"github.com/matzehuels/erchart/pkg/source/mongostore"
	"github.com/matzehuels/erchart/pkg/source/sqlstore"
)

// Source kinds accepted in [source] kind.
const (
	sourceFile  = "file"
	sourceHTTP  = "http"
	sourceSQL   = "sql"
	sourceMongo = "mongo"
)

// openSource builds the configured provider. Remote providers are wrapped
// with the schema cache; files are always read fresh so that edits show up
// immediately. The returned close function releases connections.
func (c *CLI) openSource(ctx context.Context, ch cache.Cache, refresh bool) (source.Provider, func(), error) {
	sc := c.config.Source
	kind := sc.Kind
	if kind == "" {
		kind = sourceFile
		if sc.URL != "" {
			kind = sourceHTTP
		}
	}

	sel, err := source.NewSelector(sc.Select)
	if err != nil {
		return nil, nil, err
	}

	var (
		p       source.Provider
		closeFn = func() {}
	)
	switch kind {
	case sourceFile:
		if sc.Path == "" {
			return nil, nil, errors.New(errors.ErrCodeInvalidSource, "file source needs a path")
		}
		return source.NewFile(expandHome(sc.Path), sel), closeFn, nil

	case sourceHTTP:
		var timeout time.Duration
		if sc.Timeout != "" {
			if timeout, err = time.ParseDuration(sc.Timeout); err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "source timeout %q", sc.Timeout)
			}
		}
		p, err = source.NewHTTP(sc.URL, source.HTTPOptions{
			Token:    sc.Token,
			Selector: sel,
			Timeout:  timeout,
			Logger:   c.Logger,
		})
		if err != nil {
			return nil, nil, err
		}

	case sourceSQL:
		s, err := sqlstore.Open(sc.Driver, sc.DSN, sqlstore.Options{Driver: sc.Driver, Table: sc.Table, Prefix: sc.Prefix})
		if err != nil {
			return nil, nil, err
		}
		p, closeFn = s, func() { _ = s.Close() }

	case sourceMongo:
		s, err := mongostore.Connect(ctx, sc.URI, sc.Database, sc.Collection, mongostore.Options{})
		if err != nil {
			return nil, nil, err
		}
		p, closeFn = s, func() { _ = s.Close(context.Background()) }

	default:
		return nil, nil, errors.New(errors.ErrCodeInvalidSource, "unknown source kind %q (want file, http, sql or mongo)", kind)
	}

	cp := source.Cached(p, ch, c.keyer(), c.schemaTTL())
	cp.Refresh = refresh
	cp.Logger = c.Logger
	return cp, closeFn, nil
}

// sourcePaths returns the local files backing the configured source, for
// watching.
func (c *CLI) sourcePaths() []string {
	sc := c.config.Source
	if (sc.Kind == "" || sc.Kind == sourceFile) && sc.Path != "" && sc.Path != "-" {
		return []string{expandHome(sc.Path)}
	}
	return nil
}
