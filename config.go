package timekit

import (
	"sync"
)

const (
	// DefaultAPIBaseURL is the production Timekit API.
	DefaultAPIBaseURL = "https://api.timekit.io/"
	// DefaultAPIVersion is prefixed to every endpoint path.
	DefaultAPIVersion = "v2"
)

// Settings holds the non-secret part of the client configuration.
type Settings struct {
	App        string `json:"app"`
	APIBaseURL string `json:"apiBaseUrl"`
	APIVersion string `json:"apiVersion"`
	Timezone   string `json:"timezone,omitempty"`
}

// Credentials identify the user that authenticated calls are made for.
type Credentials struct {
	Email    string `json:"email"`
	APIToken string `json:"api_token"`
}

// IsZero reports whether no user has been set.
func (c Credentials) IsZero() bool {
	return c.Email == "" && c.APIToken == ""
}

// configStore is the mutable configuration shared by all calls of a Client.
// Requests copy it when they are built, so writes never reach a request
// that is already in flight.
type configStore struct {
	mu       sync.RWMutex
	settings Settings
	creds    Credentials
}

func newConfigStore() *configStore {
	return &configStore{
		settings: Settings{
			APIBaseURL: DefaultAPIBaseURL,
			APIVersion: DefaultAPIVersion,
		},
	}
}

func (s *configStore) snapshot() (Settings, Credentials) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.creds
}

func (s *configStore) merge(update Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.App != "" {
		s.settings.App = update.App
	}
	if update.APIBaseURL != "" {
		s.settings.APIBaseURL = update.APIBaseURL
	}
	if update.APIVersion != "" {
		s.settings.APIVersion = update.APIVersion
	}
	if update.Timezone != "" {
		s.settings.Timezone = update.Timezone
	}
}

func (s *configStore) setUser(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
}

// Configure merges the non-empty fields of update into the client settings.
// The change applies to calls started afterwards.
func (c *Client) Configure(update Settings) {
	c.config.merge(update)
}

// ConfigureMap merges recognized keys (app, apiBaseUrl, apiVersion, timezone)
// into the client settings. Unknown keys are ignored.
func (c *Client) ConfigureMap(options map[string]string) {
	var update Settings
	for key, value := range options {
		switch key {
		case "app":
			update.App = value
		case "apiBaseUrl":
			update.APIBaseURL = value
		case "apiVersion":
			update.APIVersion = value
		case "timezone":
			update.Timezone = value
		}
	}
	c.config.merge(update)
}

// SetUser stores the credentials used by authenticated endpoints.
func (c *Client) SetUser(email, apiToken string) {
	c.config.setUser(Credentials{Email: email, APIToken: apiToken})
}

// User returns the credentials currently in use.
func (c *Client) User() Credentials {
	_, creds := c.config.snapshot()
	return creds
}

// Settings returns a copy of the current settings.
func (c *Client) Settings() Settings {
	settings, _ := c.config.snapshot()
	return settings
}
