package timekit

import (
	"context"
	"net/http"
)

var (
	epCreateUser  = endpoint{name: "createUser", method: http.MethodPost, path: "/users"}
	epGetUserInfo = endpoint{name: "getUserInfo", method: http.MethodGet, path: "/users/me", auth: true}
	epUpdateUser  = endpoint{name: "updateUser", method: http.MethodPut, path: "/users/me", auth: true}
)

// CreateUser registers a new user. It does not change the client's credentials.
func (c *Client) CreateUser(ctx context.Context, user NewUser) (*Response[User], error) {
	return send[User](ctx, c, epCreateUser, call{body: user})
}

// GetUserInfo returns the current user.
func (c *Client) GetUserInfo(ctx context.Context) (*Response[User], error) {
	return send[User](ctx, c, epGetUserInfo, call{})
}

// UpdateUser applies a partial update to the current user.
func (c *Client) UpdateUser(ctx context.Context, update UserUpdate) (*Response[NoContent], error) {
	return send[NoContent](ctx, c, epUpdateUser, call{body: update})
}
