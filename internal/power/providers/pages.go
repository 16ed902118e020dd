package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const (
	// DefaultUserAgent matches the identifier the collector has always sent.
	DefaultUserAgent = "ScraperBot/1.0"
	// DefaultMaxBodyBytes bounds how much of a page is read.
	DefaultMaxBodyBytes int64 = 4 << 20

	sourceName = "vidyutpravah"
)

// PageFetcher implements power.Fetcher for the state status pages.
type PageFetcher struct {
	name      string
	client    *http.Client
	userAgent string
	maxBody   int64
	circuit   *gobreaker.CircuitBreaker
}

// PageFetcherOptions configures a PageFetcher. Zero values select defaults.
type PageFetcherOptions struct {
	UserAgent    string
	MaxBodyBytes int64
	Breaker      BreakerConfig
}

// NewPageFetcher creates a fetcher sharing client across sequential calls.
func NewPageFetcher(client *http.Client, opts PageFetcherOptions) *PageFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Breaker.OpenTimeout <= 0 {
		opts.Breaker.OpenTimeout = 2 * time.Minute
	}

	return &PageFetcher{
		name:      sourceName,
		client:    client,
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodyBytes,
		circuit:   newCircuitBreaker(sourceName, opts.Breaker),
	}
}

// Name identifies the upstream in errors and breaker state.
func (f *PageFetcher) Name() string {
	return f.name
}

// Fetch performs one GET. The client's timeout bounds the whole exchange.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (int, []byte, error) {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return req, nil
	}

	resp, err := doRequest(ctx, f.client, f.circuit, f.maxBody, buildRequest)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return resp.status, resp.body, nil
}
