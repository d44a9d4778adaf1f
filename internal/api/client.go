// Package api is the client for the WheelX REST API used by the back-office.
//
// Every resource function is total: failures are logged and answered with a
// documented fallback value. A 401 from any call clears the session and
// navigates to the login screen before the call reports failure.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wheelx-dev/wheelx/internal/session"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:3001/api/v1"

// Client represents an HTTP client for the WheelX API
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	navigator  Navigator
	logger     zerolog.Logger
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNavigator sets where unauthorized sessions are sent.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a new API client reading its credentials from store.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:     store,
		navigator: noopNavigator{},
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Logout clears the session.
func (c *Client) Logout() error {
	if c.store == nil {
		return nil
	}
	return c.store.Clear()
}
