package timekit

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

var (
	epAuth                = endpoint{name: "auth", method: http.MethodGet, path: "/auth"}
	epAccountGoogleSignup = endpoint{name: "accountGoogleSignup", method: http.MethodGet, path: "/accounts/google/signup"}
)

// Auth exchanges an email and password for the user's API token. On success
// the returned email and token become the client's credentials. A response
// without a token fails with a DecodeError and leaves them unchanged.
func (c *Client) Auth(ctx context.Context, email, password string) (*Response[User], error) {
	resp, err := send[User](ctx, c, epAuth, call{
		basic: &Credentials{Email: email, APIToken: password},
	})
	if err != nil {
		return nil, err
	}

	if resp.Data.APIToken == "" {
		decodeErr := &DecodeError{Endpoint: epAuth.name, Status: resp.Status, Err: errors.New("response has no api_token")}
		c.metrics.recordError(epAuth.name, decodeErr)
		return nil, decodeErr
	}

	if resp.Data.Email != "" {
		email = resp.Data.Email
	}
	c.SetUser(email, resp.Data.APIToken)
	return resp, nil
}

// AccountGoogleSignup returns the URL a browser should visit to sign up with
// a Google account. No request is made. The user is sent to callback
// afterwards when it is not empty.
func (c *Client) AccountGoogleSignup(callback string) string {
	settings, _ := c.config.snapshot()

	query := url.Values{}
	query.Set("Timekit-App", settings.App)
	if callback != "" {
		query.Set("callback", callback)
	}

	return joinURL(settings, epAccountGoogleSignup.path) + "?" + query.Encode()
}
