package timekit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrAuthentication = errors.New("timekit: authentication failed")
	ErrValidation     = errors.New("timekit: request rejected")
	ErrServer         = errors.New("timekit: server error")
	ErrTransport      = errors.New("timekit: transport failure")
	ErrDecode         = errors.New("timekit: unexpected response body")
)

// ErrorKind classifies an APIError by status code.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindValidation     ErrorKind = "validation"
	KindServer         ErrorKind = "server"
)

// APIError is a non-2xx answer from the API. The body has the form
// {"error": {"message": "...", "status_code": 401}}.
type APIError struct {
	Status  int       // HTTP status of the response
	Code    int       // error.status_code from the body, Status if absent
	Message string
	Kind    ErrorKind
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status: status,
		Code:   status,
		Kind:   kindForStatus(status),
	}

	var envelope struct {
		Error struct {
			Message    string `json:"message"`
			StatusCode int    `json:"status_code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		if envelope.Error.StatusCode != 0 {
			apiErr.Code = envelope.Error.StatusCode
		}
	} else {
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("timekit: %s error (status %d): %s", e.Kind, e.Code, e.Message)
}

// Is matches the sentinel for the error kind.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

// TransportError is a failure to reach the API or read its answer.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("timekit: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DecodeError reports a response body that does not match the expected shape.
type DecodeError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("timekit: failed to decode %s response (status %d): %v", e.Endpoint, e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// StatusCode extracts the API status code from err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// errorKindLabel names err for metrics.
func errorKindLabel(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return string(apiErr.Kind)
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "request"
	}
}
