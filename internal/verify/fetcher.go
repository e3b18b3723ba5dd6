package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"tuli_go/internal/domain"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxBytes     = 64 << 20
)

// HTTPFetcher retrieves content payloads over HTTP(S).
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher creates a fetcher. Zero values fall back to the defaults.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		maxBytes: maxBytes,
	}
}

// Fetch downloads uri. Non-2xx responses and oversized bodies are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, domain.NewFatalNetworkError("fetch", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		statusErr := fmt.Errorf("%s: bad status: %s", uri, resp.Status)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, domain.NewNetworkError("fetch", statusErr)
		}
		return nil, domain.NewFatalNetworkError("fetch", statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, domain.NewNetworkError("fetch", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, domain.NewFatalNetworkError("fetch", fmt.Errorf("%s: payload exceeds %d bytes", uri, f.maxBytes))
	}
	return body, nil
}

// CloseIdleConnections releases pooled connections.
func (f *HTTPFetcher) CloseIdleConnections() {
	f.client.CloseIdleConnections()
}
