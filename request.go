package timekit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// endpoint describes one API operation.
type endpoint struct {
	name   string
	method string
	path   string // placeholders are written as :name
	auth   bool
	raw    bool // response body is not wrapped in {"data": ...}
}

// call carries the per-invocation arguments of an endpoint.
type call struct {
	params map[string]string
	query  url.Values
	body   any

	// basic, when set, authenticates the call instead of the stored user.
	basic *Credentials
}

// newRequest builds the HTTP request for ep. Settings and credentials are
// read once, here, so the request is unaffected by later configuration.
func (c *Client) newRequest(ctx context.Context, ep endpoint, args call) (*http.Request, error) {
	settings, creds := c.config.snapshot()

	path, err := expandPath(ep.path, args.params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ep.name, err)
	}

	target := joinURL(settings, path)
	if len(args.query) > 0 {
		target += "?" + args.query.Encode()
	}

	var body io.Reader
	if args.body != nil {
		data, err := json.Marshal(args.body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request body: %w", ep.name, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, target, body)
	if err != nil {
		return nil, &TransportError{Method: ep.method, URL: target, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if settings.App != "" {
		req.Header.Set("Timekit-App", settings.App)
	}
	if settings.Timezone != "" {
		req.Header.Set("Timekit-Timezone", settings.Timezone)
	}

	switch {
	case args.basic != nil:
		basicToken(*args.basic).SetAuthHeader(req)
	case ep.auth && !creds.IsZero():
		basicToken(creds).SetAuthHeader(req)
	}

	return req, nil
}

// basicToken renders credentials as an HTTP Basic token.
func basicToken(creds Credentials) *oauth2.Token {
	raw := base64.StdEncoding.EncodeToString([]byte(creds.Email + ":" + creds.APIToken))
	return &oauth2.Token{AccessToken: raw, TokenType: "Basic"}
}

// joinURL returns base URL + version + path with exactly one slash between parts.
func joinURL(settings Settings, path string) string {
	base := strings.TrimRight(settings.APIBaseURL, "/")
	if version := strings.Trim(settings.APIVersion, "/"); version != "" {
		base += "/" + version
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

// expandPath substitutes :name segments of path with escaped values.
func expandPath(path string, params map[string]string) (string, error) {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}
		name := segment[1:]
		value := params[name]
		if value == "" {
			return "", fmt.Errorf("missing value for path parameter %q", name)
		}
		segments[i] = url.PathEscape(value)
	}
	return strings.Join(segments, "/"), nil
}
