// Package render fetches page text for the heuristic sources. Reference
// pages are static HTML served fine over plain HTTP; the chromedp fetcher
// exists for pages that only populate after client-side rendering.
package render

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/huddlestats/gridiron/pkg/errors"
)

const (
	defaultTimeout = 15 * time.Second

	// maxBodyBytes bounds how much of a page is read. Reference pages are
	// large but a multi-megabyte cap covers every one seen in practice.
	maxBodyBytes = 8 << 20
)

// Fetcher retrieves the text of a page.
type Fetcher interface {
	// FetchText returns the page body for the URL. Failures are
	// *errors.AdapterError values carrying the configured source tag.
	FetchText(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages with a plain HTTP GET.
type HTTPFetcher struct {
	source    string
	client    *http.Client
	userAgent string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// NewHTTPFetcher creates a fetcher whose errors carry the given source tag.
func NewHTTPFetcher(source string, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		source: source,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText implements Fetcher.
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewAdapterError(f.source, 0, "building request", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.NewAdapterError(f.source, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.NewAdapterError(f.source, resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", errors.NewAdapterError(f.source, 0, "reading response body", err)
	}
	return string(body), nil
}
