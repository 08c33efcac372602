package source

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/httputil"
	"github.com/matzehuels/erchart/pkg/schema"
)

// =============================================================================
// Memory
// =============================================================================

// Memory serves a fixed record list. Used by tests and the er-data endpoint.
type Memory struct {
	name    string
	records []schema.Record
}

// NewMemory returns a provider that always yields records.
func NewMemory(name string, records []schema.Record) *Memory {
	if name == "" {
		name = "memory"
	}
	return &Memory{name: name, records: records}
}

// Fetch implements [Provider].
func (m *Memory) Fetch(ctx context.Context) ([]schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneRecords(m.records), nil
}

// Name implements [Provider].
func (m *Memory) Name() string { return m.name }

// =============================================================================
// File
// =============================================================================

// File reads a JSON or YAML schema document from disk on every fetch.
type File struct {
	Path     string
	Format   string // derived from the extension when empty
	Selector *Selector
}

// NewFile returns a file provider for path.
func NewFile(path string, sel *Selector) *File {
	return &File{Path: path, Format: FormatFromPath(path), Selector: sel}
}

// Fetch implements [Provider].
func (f *File) Fetch(ctx context.Context) ([]schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(f.Path); err != nil {
		return nil, err
	}
	var (
		data []byte
		err  error
	)
	if f.Path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(f.Path)
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "schema file %s", f.Path)
	}
	if err != nil {
		return nil, err
	}
	format := f.Format
	if format == "" {
		format = FormatFromPath(f.Path)
	}
	return Decode(data, format, f.Selector)
}

// Name implements [Provider].
func (f *File) Name() string { return "file:" + f.Path }

// =============================================================================
// HTTP
// =============================================================================

// TokenEnv is the environment variable holding a bearer token for the HTTP
// provider when none is configured.
const TokenEnv = "ERCHART_TOKEN"

// HTTP fetches the schema document from an endpoint such as a content
// store's er-data route. Transient failures are retried.
type HTTP struct {
	URL      string
	Token    string
	Headers  map[string]string
	Selector *Selector
	Client   *http.Client
	Retry    httputil.Policy
	Logger   *log.Logger
}

// HTTPOptions configures [NewHTTP].
type HTTPOptions struct {
	Token    string
	Selector *Selector
	Timeout  time.Duration
	Logger   *log.Logger
}

// NewHTTP validates url and returns an HTTP provider. The token defaults to
// $ERCHART_TOKEN.
func NewHTTP(url string, opts HTTPOptions) (*HTTP, error) {
	if err := errors.ValidateSourceURL(url); err != nil {
		return nil, err
	}
	token := opts.Token
	if token == "" {
		token = os.Getenv(TokenEnv)
	}
	return &HTTP{
		URL:      url,
		Token:    token,
		Selector: opts.Selector,
		Client:   httputil.NewClient(opts.Timeout),
		Retry:    httputil.DefaultPolicy,
		Logger:   opts.Logger,
	}, nil
}

// Fetch implements [Provider].
func (h *HTTP) Fetch(ctx context.Context) ([]schema.Record, error) {
	headers := map[string]string{"Accept": "application/json"}
	for k, v := range h.Headers {
		headers[k] = v
	}
	if h.Token != "" {
		headers["Authorization"] = "Bearer " + h.Token
	}
	client := h.Client
	if client == nil {
		client = httputil.NewClient(0)
	}

	attempt := 0
	var body []byte
	err := h.Retry.Do(ctx, func() (err error) {
		attempt++
		if attempt > 1 && h.Logger != nil {
			h.Logger.Warn("retrying schema fetch", "url", h.URL, "attempt", attempt)
		}
		body, err = httputil.Get(ctx, client, h.URL, headers)
		return err
	})
	if err != nil {
		return nil, err
	}
	return Decode(body, FormatJSON, h.Selector)
}

// Name implements [Provider].
func (h *HTTP) Name() string { return "http:" + h.URL }
