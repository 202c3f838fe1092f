package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// BrowserClient uses browser-like headers to avoid 406 (Not Acceptable) errors
	BrowserClient ClientType = "browser"

	// CloudflareClient uses simple headers (like curl) to avoid 403 (Forbidden) errors
	// from mirrors that block browser-like User-Agents
	CloudflareClient ClientType = "cloudflare"

	// DefaultClient sends a plain identifying User-Agent
	DefaultClient ClientType = "default"
)

// DefaultTimeout bounds a whole request, body included
const DefaultTimeout = 30 * time.Second

const userAgent = "play-extract/1.0"

const maxRedirects = 10

// ParseClientType maps a configuration value to a ClientType
func ParseClientType(s string) (ClientType, error) {
	switch ClientType(s) {
	case BrowserClient, CloudflareClient, DefaultClient:
		return ClientType(s), nil
	case "":
		return DefaultClient, nil
	default:
		return "", fmt.Errorf("unknown http client type: %q", s)
	}
}

// HTTPClient wraps an http.Client with configuration
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
}

// NewClient creates a new HTTP client with the specified type and the default timeout
func NewClient(clientType ClientType) *HTTPClient {
	return NewClientWithTimeout(clientType, DefaultTimeout)
}

// NewClientWithTimeout creates a new HTTP client. A non-positive timeout disables it.
func NewClientWithTimeout(clientType ClientType, timeout time.Duration) *HTTPClient {
	if timeout < 0 {
		timeout = 0
	}
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
	}
}

// Type returns the header profile of the client
func (c *HTTPClient) Type() ClientType {
	return c.clientType
}

// Do executes an HTTP request with the appropriate headers for the client type
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.GetContext(context.Background(), url)
}

// GetContext issues a GET request bound to ctx
func (c *HTTPClient) GetContext(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Connection", "keep-alive")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	case CloudflareClient:
		// Cloudflare lets curl-like clients through
		req.Header.Set("User-Agent", "curl/8.7.1")

	default:
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/plain, text/html;q=0.9, */*;q=0.5")
	}
}
