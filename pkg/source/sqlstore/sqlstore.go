// Package sqlstore reads schema records from a SQL key/value "core store"
// table, the layout used by headless content management systems to keep
// their model definitions.
//
// Every row whose key starts with the configured prefix (model_def_ by
// default) holds one record as JSON:
//
//	key                      | value
//	model_def_api::product   | {"name": "Products", "key": "products", "attributes": {...}}
//
// Rows are read in key order. Records without a key take the row key minus
// the prefix.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/schema"
)

// Defaults.
const (
	DefaultTable  = "core_store"
	DefaultPrefix = "model_def_"
)

// Supported driver names, as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Options configures the store.
type Options struct {
	// Driver selects quoting and placeholder syntax. Defaults to sqlite.
	Driver string
	Table  string
	Prefix string
	// KeyColumn and ValueColumn default to "key" and "value".
	KeyColumn   string
	ValueColumn string
}

func (o Options) withDefaults() Options {
	if o.Driver == "" {
		o.Driver = DriverSQLite
	}
	if o.Table == "" {
		o.Table = DefaultTable
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.KeyColumn == "" {
		o.KeyColumn = "key"
	}
	if o.ValueColumn == "" {
		o.ValueColumn = "value"
	}
	return o
}

// Store is a [source.Provider] backed by a *sql.DB.
//
// [source.Provider]: github.com/matzehuels/erchart/pkg/source.Provider
type Store struct {
	db    *sql.DB
	opts  Options
	query string
	owned bool
}

// New wraps an open database.
func New(db *sql.DB, opts Options) (*Store, error) {
	opts = opts.withDefaults()
	q, err := buildQuery(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, opts: opts, query: q}, nil
}

// Open opens dsn with driver and wraps it. Close releases the connection.
func Open(driver, dsn string, opts Options) (*Store, error) {
	opts.Driver = driver
	opts = opts.withDefaults()
	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "open %s database", opts.Driver)
	}
	s, err := New(db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

func buildQuery(o Options) (string, error) {
	var quote func(string) string
	placeholder := "?"
	switch o.Driver {
	case DriverSQLite, DriverPostgres:
		quote = func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
		if o.Driver == DriverPostgres {
			placeholder = "$1"
		}
	case DriverMySQL:
		quote = func(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" }
	default:
		return "", errors.New(errors.ErrCodeInvalidSource, "unsupported sql driver %q", o.Driver)
	}
	// Postgres and MySQL escape LIKE patterns with a backslash by default.
	escape := ""
	if o.Driver == DriverSQLite {
		escape = ` ESCAPE '\'`
	}
	k, v := quote(o.KeyColumn), quote(o.ValueColumn)
	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s LIKE %s%s ORDER BY %s",
		k, v, quote(o.Table), k, placeholder, escape, k), nil
}

// Fetch implements source.Provider.
func (s *Store) Fetch(ctx context.Context) ([]schema.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.query, likePrefix(s.opts.Prefix))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.opts.Table, err)
	}
	defer rows.Close()

	var out []schema.Record
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.opts.Table, err)
		}
		if !value.Valid || value.String == "" {
			continue
		}
		var r schema.Record
		if err := json.Unmarshal([]byte(value.String), &r); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "row %s", key)
		}
		if r.Key == "" {
			r.Key = strings.TrimPrefix(key, s.opts.Prefix)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.opts.Table, err)
	}
	return out, nil
}

// Name implements source.Provider.
func (s *Store) Name() string { return fmt.Sprintf("sql:%s/%s/%s", s.opts.Driver, s.opts.Table, s.opts.Prefix) }

// Close closes the database if it was opened by [Open].
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// likePrefix escapes LIKE wildcards in prefix and appends %.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
