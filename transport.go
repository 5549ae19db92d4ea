package timekit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// Response is a successful API response. Data holds the decoded payload; it
// is left zero for 204 responses and for NoContent endpoints.
type Response[T any] struct {
	Status int
	Header http.Header
	Data   T
}

// NoContent is the payload type of endpoints that return no data. Their
// response body, if any, is not decoded.
type NoContent struct{}

type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

// send performs the call and decodes the payload into T.
func send[T any](ctx context.Context, c *Client, ep endpoint, args call) (*Response[T], error) {
	raw, err := c.roundTrip(ctx, ep, args)
	if err != nil {
		return nil, err
	}

	resp := &Response[T]{Status: raw.status, Header: raw.header}
	if _, noContent := any(resp.Data).(NoContent); noContent || raw.status == http.StatusNoContent {
		return resp, nil
	}

	if err := decodeBody(ep, raw.body, &resp.Data); err != nil {
		decodeErr := &DecodeError{Endpoint: ep.name, Status: raw.status, Err: err}
		c.metrics.recordError(ep.name, decodeErr)
		return nil, decodeErr
	}

	return resp, nil
}

// decodeBody unmarshals a successful body into v. Unless ep is raw the body
// must be an object with a "data" member.
func decodeBody(ep endpoint, body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty response body")
	}
	if ep.raw {
		return json.Unmarshal(body, v)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	if len(envelope.Data) == 0 {
		return errors.New(`response has no "data" member`)
	}
	return json.Unmarshal(envelope.Data, v)
}

// roundTrip executes one request and classifies the outcome. Non-2xx
// statuses are returned as *APIError. There are no retries.
func (c *Client) roundTrip(ctx context.Context, ep endpoint, args call) (*rawResponse, error) {
	req, err := c.newRequest(ctx, ep, args)
	if err != nil {
		c.metrics.recordError(ep.name, err)
		return nil, err
	}

	start := time.Now()
	c.metrics.requestStarted(ep.name, ep.method)
	defer c.metrics.requestFinished(ep.name, ep.method)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		transportErr := &TransportError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
		c.logger.Debug().
			Str("endpoint", ep.name).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("timekit request failed")
		c.metrics.recordError(ep.name, transportErr)
		return nil, transportErr
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		transportErr := &TransportError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
		c.metrics.recordError(ep.name, transportErr)
		return nil, transportErr
	}

	duration := time.Since(start)
	c.metrics.recordRequest(ep.name, ep.method, httpResp.StatusCode, duration)
	c.logger.Debug().
		Str("endpoint", ep.name).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", httpResp.StatusCode).
		Dur("duration", duration).
		Msg("timekit request")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := newAPIError(httpResp.StatusCode, body)
		c.metrics.recordError(ep.name, apiErr)
		return nil, apiErr
	}

	return &rawResponse{
		status: httpResp.StatusCode,
		header: httpResp.Header,
		body:   body,
	}, nil
}
