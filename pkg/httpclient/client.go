// Package httpclient fetches values documents served over HTTP so
// plans can be checked against a live endpoint.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"digital.vasic.pavlov/pkg/plan"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 30 * time.Second

// maxBody caps the response size read into memory.
const maxBody = 32 << 20

// ClientOption configures a Client via functional options.
type ClientOption func(*Client)

// Client issues GET requests for values documents, optionally
// with a bearer token and extra headers.
type Client struct {
	token      string
	headers    http.Header
	httpClient *http.Client
}

// NewClient creates a Client. Pass ClientOption values to
// override defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		headers: make(http.Header),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithTimeout overrides the default HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithBearerToken sends token in the Authorization header.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHeader adds a request header.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers.Add(key, value) }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// IsURL reports whether source names an http or https resource
// rather than a local file.
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://")
}

// Get fetches url and returns the body. Any status outside 2xx
// is an error carrying the start of the body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf(
			"GET %s returned HTTP %d: %s",
			url, resp.StatusCode, snippet(data),
		)
	}
	return data, nil
}

// FetchValues fetches url and decodes it as a YAML or JSON values
// document.
func (c *Client) FetchValues(ctx context.Context, url string) (any, error) {
	data, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return plan.ParseValues(data, url)
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
