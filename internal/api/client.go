package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/coinsnap/internal/version"
)

// Default timeouts. Both are hard upper bounds applied as context deadlines.
const (
	DefaultTimeout          = 30 * time.Second
	DefaultDirectoryTimeout = 15 * time.Second
	DefaultAPIKeyHeader     = "x-cg-demo-api-key"
	DefaultRetryBackoff     = 500 * time.Millisecond
)

// Client provides access to the CoinGecko REST API.
type Client struct {
	baseURL      string
	apiKey       string
	apiKeyHeader string
	userAgent    string
	httpClient   *http.Client
	logger       *slog.Logger

	timeout          time.Duration
	directoryTimeout time.Duration

	// Retries apply to the directory call only. The markets call is never retried.
	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:          baseURL,
		apiKey:           apiKey,
		apiKeyHeader:     DefaultAPIKeyHeader,
		userAgent:        version.UserAgent(),
		httpClient:       &http.Client{},
		logger:           slog.Default(),
		timeout:          DefaultTimeout,
		directoryTimeout: DefaultDirectoryTimeout,
		maxRetries:       0,
		retryBackoff:     DefaultRetryBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the markets call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithDirectoryTimeout sets the coin directory call timeout.
func WithDirectoryTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.directoryTimeout = d
	}
}

// WithRetries sets the retry configuration for the directory call.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithAPIKeyHeader sets the header carrying the API key (demo or pro plan).
func WithAPIKeyHeader(name string) ClientOption {
	return func(c *Client) {
		c.apiKeyHeader = name
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
