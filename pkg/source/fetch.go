package source

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/nbenv/pkg/buildinfo"
	"github.com/matzehuels/nbenv/pkg/cache"
	"github.com/matzehuels/nbenv/pkg/errors"
	"github.com/matzehuels/nbenv/pkg/httputil"
	"github.com/matzehuels/nbenv/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second

	// MaxNotebookSize bounds the body of a fetched notebook.
	MaxNotebookSize = 50 << 20
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch notebook: status %d", e.Code)
}

// Fetcher downloads notebooks over HTTP with caching and retry.
type Fetcher struct {
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	attempts int
	delay    time.Duration
}

// FetcherOption configures a [Fetcher].
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.http = c }
}

// WithCache stores fetched bodies in c for ttl.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		if keyer != nil {
			f.keyer = keyer
		}
		f.ttl = ttl
	}
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.attempts = attempts
		f.delay = delay
	}
}

// NewFetcher creates a fetcher. Without [WithCache] nothing is cached.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		http:     &http.Client{Timeout: httpTimeout},
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		ttl:      cache.TTLNotebook,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the notebook body at rawURL. Network errors and 5xx
// responses are retried with exponential backoff. If refresh is true the
// cache is bypassed, but a successful body still replaces the cached one.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, refresh bool) ([]byte, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	key := f.keyer.NotebookKey(rawURL)
	if !refresh {
		if data, hit, err := f.cache.Get(ctx, key); err == nil && hit {
			return data, nil
		}
	}

	var body []byte
	err := httputil.Retry(ctx, f.attempts, f.delay, func() error {
		var err error
		body, err = f.get(ctx, rawURL)
		return err
	})
	if err != nil {
		var se *StatusError
		if stderrors.As(err, &se) {
			return nil, errors.Wrap(errors.ErrCodeAcquisition, err, "failed to fetch notebook: status %d", se.Code)
		}
		return nil, errors.Wrap(errors.ErrCodeAcquisition, err, "unable to fetch notebook from %s", rawURL)
	}

	if !json.Valid(body) {
		return nil, errors.New(errors.ErrCodeAcquisition, "invalid .ipynb file: response from %s is not valid JSON", rawURL)
	}

	_ = f.cache.Set(ctx, key, body, f.ttl)
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, _ := url.Parse(rawURL)
	hooks := observability.HTTP()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", "application/x-ipynb+json, application/json;q=0.9, */*;q=0.1")

	start := time.Now()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	resp, err := f.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxNotebookSize+1))
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > MaxNotebookSize {
		return nil, fmt.Errorf("notebook exceeds %d bytes", MaxNotebookSize)
	}
	return body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500 || code == http.StatusTooManyRequests:
		return &httputil.RetryableError{
			Err:   &StatusError{Code: code},
			After: httputil.RetryAfter(resp.Header, time.Now()),
		}
	default:
		return &StatusError{Code: code}
	}
}
