package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// MaxRedirects is the number of redirects followed before a request fails
const MaxRedirects = 10

// ClientConfig represents HTTP client configuration
type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultConfig returns default HTTP client configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:   20 * time.Second,
		UserAgent: "veteran-bot/1.0",
		Headers:   make(map[string]string),
	}
}

// Client is an HTTP client that makes exactly one attempt per request,
// bounded by the configured timeout.
type Client struct {
	client *http.Client
	config *ClientConfig
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	return &Client{
		client: &http.Client{
			Timeout: config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxRedirects {
					return fmt.Errorf("stopped after %d redirects", MaxRedirects)
				}
				return nil
			},
		},
		config: config,
	}
}

// HTTPClient exposes the underlying *http.Client for libraries that need one
func (c *Client) HTTPClient() *http.Client {
	return c.client
}

// Timeout returns the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// UserAgent returns the configured User-Agent
func (c *Client) UserAgent() string {
	return c.config.UserAgent
}

// GetWithContext performs a single HTTP GET request with context
func (c *Client) GetWithContext(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.Do(req)
}

// Do sets the default headers and performs the request
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}

	return c.client.Do(req)
}
