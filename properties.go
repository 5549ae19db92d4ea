package timekit

import (
	"context"
	"net/http"
)

var (
	epGetUserProperties = endpoint{name: "getUserProperties", method: http.MethodGet, path: "/properties", auth: true}
	epGetUserProperty   = endpoint{name: "getUserProperty", method: http.MethodGet, path: "/properties/:key", auth: true}
	epSetUserProperties = endpoint{name: "setUserProperties", method: http.MethodPut, path: "/properties", auth: true}
)

// GetUserProperties lists the key/value properties of the current user.
func (c *Client) GetUserProperties(ctx context.Context) (*Response[[]Property], error) {
	return send[[]Property](ctx, c, epGetUserProperties, call{})
}

// GetUserProperty returns the property stored under key.
func (c *Client) GetUserProperty(ctx context.Context, key string) (*Response[Property], error) {
	return send[Property](ctx, c, epGetUserProperty, call{
		params: map[string]string{"key": key},
	})
}

// SetUserProperties stores the given key/value pairs, keeping other properties.
func (c *Client) SetUserProperties(ctx context.Context, properties map[string]string) (*Response[NoContent], error) {
	return send[NoContent](ctx, c, epSetUserProperties, call{body: properties})
}
