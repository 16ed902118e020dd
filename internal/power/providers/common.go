package providers

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// ClientConfig bundles transport settings for outbound page fetches.
type ClientConfig struct {
	Timeout            time.Duration
	ProxyURL           string
	InsecureSkipVerify bool
}

// BreakerConfig controls when the circuit breaker stops sending requests upstream.
// ConsecutiveFailures <= 0 disables tripping.
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

var (
	errServerError  = errors.New("server error")
	errRateLimited  = errors.New("rate limited")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
	errBodyTooLarge = errors.New("response body exceeds limit")
)

// NewHTTPClient builds the shared client used for every page fetch.
// TLS verification stays on unless InsecureSkipVerify is set.
func NewHTTPClient(cfg ClientConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		if proxy.Scheme == "" || proxy.Host == "" {
			return nil, fmt.Errorf("invalid proxy url: missing scheme or host")
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}, nil
}

func newCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
	}
	if cfg.ConsecutiveFailures > 0 {
		limit := cfg.ConsecutiveFailures
		settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= limit
		}
	} else {
		settings.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	}
	return gobreaker.NewCircuitBreaker(settings)
}

type response struct {
	status int
	body   []byte
}

// doRequest executes a single request through the circuit breaker. There are no
// retries: a failed fetch is reported once and the caller moves on.
// Server errors and rate limiting count as breaker failures; other non-2xx
// statuses are returned to the caller with a nil error.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	maxBody int64,
	buildRequest func() (*http.Request, error),
) (response, error) {
	if client == nil {
		return response{}, errNoHTTPClient
	}

	req, err := buildRequest()
	if err != nil {
		return response{}, err
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %d", errRateLimited, resp.StatusCode)
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}
		if int64(len(body)) > maxBody {
			return nil, fmt.Errorf("%w: %d bytes", errBodyTooLarge, maxBody)
		}

		return response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return response{}, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return response{}, err
	}

	resp, ok := result.(response)
	if !ok {
		return response{}, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
