// Package httputil provides HTTP utilities for remote schema providers.
//
// # Overview
//
//   - [NewClient]: client with a timeout and an instrumented [Transport]
//   - [Get]: GET with headers, status mapping and body read
//   - [Policy]: retry with exponential backoff
//
// # Retry
//
// [Policy.Do] retries only errors wrapped with [Retryable]. [Get] marks
// network failures and 408, 429 and 5xx responses retryable, so a typical
// fetch looks like:
//
//	var body []byte
//	err := httputil.DefaultPolicy.Do(ctx, func() (err error) {
//	    body, err = httputil.Get(ctx, client, url, headers)
//	    return err
//	})
//
// # Instrumentation
//
// Every request made through [NewClient] carries an X-Request-Id header and
// is reported to the registered observability HTTP hooks.
package httputil
