package swift

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Common request headers of the storage API.
const (
	HeaderAuthToken   = "X-Auth-Token"
	HeaderTimestamp   = "X-Timestamp"
	HeaderTransID     = "X-Trans-Id"
	HeaderDeleteAt    = "X-Delete-At"
	HeaderDeleteAfter = "X-Delete-After"

	accountMetaPrefix   = "X-Account-Meta-"
	containerMetaPrefix = "X-Container-Meta-"
	objectMetaPrefix    = "X-Object-Meta-"
)

// Client talks to one storage account of a Swift-compatible deployment.
// All operations take a context and honor the optional client-side rate
// limit, which keeps polling loops polite against small test deployments.
type Client struct {
	httpClient *http.Client
	storageURL *url.URL
	token      string
	limiter    *rate.Limiter
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps outgoing requests at rps with the given burst
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a client for the storage URL and token returned by the
// auth handshake.
func NewClient(storageURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(storageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid storage URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("storage URL must be http or https, got %q", storageURL)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		storageURL: u,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StorageURL returns the account's storage URL
func (c *Client) StorageURL() string {
	return c.storageURL.String()
}

// url builds a request URL below the storage URL. The object name may
// contain slashes, which stay path separators. URL.String escapes the
// assembled path.
func (c *Client) url(container, object string, query url.Values) string {
	u := *c.storageURL
	p := strings.TrimRight(u.Path, "/")
	if container != "" {
		p += "/" + container
	}
	if object != "" {
		p += "/" + object
	}
	u.Path = p
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do issues a request and enforces the expected status codes. Responses with
// unexpected codes are drained into an APIError.
func (c *Client) do(ctx context.Context, method, rawurl string, headers http.Header, body io.Reader, want ...int) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, rawurl, err)
	}
	if c.token != "" {
		req.Header.Set(HeaderAuthToken, c.token)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawurl, err)
	}

	for _, code := range want {
		if resp.StatusCode == code {
			return resp, nil
		}
	}

	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		URL:        rawurl,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

// metadataFromHeaders extracts user metadata with the given prefix,
// lowercasing the metadata names.
func metadataFromHeaders(h http.Header, prefix string) map[string]string {
	meta := make(map[string]string)
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			meta[strings.ToLower(strings.TrimPrefix(name, prefix))] = values[0]
		}
	}
	return meta
}

// metadataHeaders renders user metadata as request headers
func metadataHeaders(prefix string, meta map[string]string) http.Header {
	h := make(http.Header, len(meta))
	for name, value := range meta {
		h.Set(prefix+name, value)
	}
	return h
}
