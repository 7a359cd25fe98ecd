// Package httputil provides retry helpers for notebook fetches.
//
// [Retry] wraps an operation with exponential backoff. Only errors wrapped in
// [RetryableError] are retried, so callers decide what is transient:
//
//   - network errors
//   - 5xx server errors
//   - 429 Too Many Requests, honoring Retry-After
//
// Everything else (4xx, malformed bodies) fails on the first attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    body, err = fetch(ctx, url)
//	    return err
//	})
package httputil
