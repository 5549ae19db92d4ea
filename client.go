// Package timekit is a client for the Timekit scheduling API.
//
// Every API endpoint is exposed as one method on Client. Methods block until
// the response has been read and honour the deadline of the context they are
// given; run them in goroutines to have several calls in flight. A Client is
// safe for concurrent use.
//
//	client := timekit.New(timekit.WithApp("demo"))
//	if _, err := client.Auth(ctx, "me@example.com", "password"); err != nil {
//		return err
//	}
//	calendars, err := client.GetCalendars(ctx)
package timekit

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Client issues requests against the Timekit API.
type Client struct {
	config     *configStore
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *MetricsCollector
}

// Option configures a Client.
type Option func(*Client)

// New creates a Client with the default settings and applies options.
func New(options ...Option) *Client {
	client := &Client{
		config:     newConfigStore(),
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithApp sets the application identifier sent in the Timekit-App header.
func WithApp(app string) Option {
	return func(c *Client) {
		c.config.merge(Settings{App: app})
	}
}

// WithAPIBaseURL overrides the API base URL.
func WithAPIBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.config.merge(Settings{APIBaseURL: baseURL})
	}
}

// WithAPIVersion overrides the version segment prefixed to every path.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.config.merge(Settings{APIVersion: version})
	}
}

// WithTimezone sets the timezone sent in the Timekit-Timezone header.
func WithTimezone(timezone string) Option {
	return func(c *Client) {
		c.config.merge(Settings{Timezone: timezone})
	}
}

// WithUser sets the initial credentials.
func WithUser(email, apiToken string) Option {
	return func(c *Client) {
		c.config.setUser(Credentials{Email: email, APIToken: apiToken})
	}
}

// WithHTTPClient replaces the underlying HTTP client. The default client has
// no timeout; deadlines come from the context passed to each call.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger enables debug logging of every request.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request metrics on the given collector.
func WithMetrics(metrics *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}
