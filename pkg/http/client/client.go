package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const userAgent = "uktides/1.0"

type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the upstream answered 200.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

type Interface interface {
	Get(ctx context.Context, rawURL string) (*Response, error)
}

// Client performs single GET requests against the EasyTide service. It never
// retries; a failed request is reported to the caller as-is.
type Client struct {
	httpClient *http.Client
	GetFunc    func(ctx context.Context, rawURL string) (*Response, error)
}

type Options struct {
	Timeout time.Duration
	// Transport replaces the default round tripper, mainly for tests.
	Transport http.RoundTripper
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
	}
}

// Get fetches rawURL and returns the full body whatever the status code.
// Callers decide what a non-200 status means.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: req.URL.Redacted(), Err: err}
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing response body")
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	log.Debug().
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched upstream")

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
