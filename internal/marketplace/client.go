package marketplace

import (
	"net/http"
	"time"
)

const (
	// DefaultAPIURL is the public gallery extension-query endpoint.
	DefaultAPIURL = "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery"
	// DefaultAPIVersion is the gallery API version sent in the Accept header.
	DefaultAPIVersion = "7.2-preview.1"
)

// Client queries the marketplace for extension metadata.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiVersion string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the extension-query endpoint.
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		if url != "" {
			cl.apiURL = url
		}
	}
}

// WithAPIVersion overrides the gallery API version.
func WithAPIVersion(version string) Option {
	return func(cl *Client) {
		if version != "" {
			cl.apiVersion = version
		}
	}
}

// WithTimeout bounds each lookup. Zero means no per-lookup timeout beyond
// the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		apiURL:     DefaultAPIURL,
		apiVersion: DefaultAPIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
