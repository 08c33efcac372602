package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/erchart/pkg/buildinfo"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/observability"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries a random ID on every outgoing request so that a
// fetch can be correlated with server logs.
const RequestIDHeader = "X-Request-Id"

// NewClient returns an HTTP client with the given timeout (DefaultTimeout if
// zero) whose transport reports to [observability.HTTPHooks] and tags
// requests with [RequestIDHeader] and the erchart user agent.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout, Transport: &Transport{}}
}

// Transport is an instrumented http.RoundTripper.
type Transport struct {
	// Base is the underlying transport; nil means http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get(RequestIDHeader) == "" || req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		if req.Header.Get(RequestIDHeader) == "" {
			req.Header.Set(RequestIDHeader, uuid.NewString())
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", buildinfo.UserAgent())
		}
	}

	ctx, hooks := req.Context(), observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// CheckStatus maps a response status to a coded error: 404 is NOT_FOUND,
// 408, 429 and 5xx are retryable NETWORK_ERRORs, other non-2xx codes are
// plain NETWORK_ERRORs.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "status %d", code)
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "status %d", code))
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d", code)
	}
}

// Get performs a GET request with headers and returns the body of a 2xx
// response. Transport failures are retryable NETWORK_ERRORs.
func Get(ctx context.Context, c *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "build request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url))
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read body"))
	}
	return body, nil
}
