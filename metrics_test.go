package timekit

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestMetrics_RecordsSuccessfulRequest(t *testing.T) {
	server := newStubServer(t, http.StatusOK, `{"data":[{"id":"1","name":"Work"}]}`)
	registry := prometheus.NewRegistry()
	metrics := NewMetricsCollector(registry)

	client := New(WithAPIBaseURL(server.URL), WithUser("me@example.com", "token"), WithMetrics(metrics))

	resp, err := client.GetCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("getCalendars", http.MethodGet, "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.requestsInFlight.WithLabelValues("getCalendars", http.MethodGet)))
	assert.Equal(t, 0, testutil.CollectAndCount(metrics.errorsTotal))
}

func TestMetrics_RecordsErrorKind(t *testing.T) {
	server := newStubServer(t, http.StatusInternalServerError, `{"error":{"message":"boom","status_code":500}}`)
	metrics := NewMetricsCollector(prometheus.NewRegistry())

	client := New(WithAPIBaseURL(server.URL), WithUser("me@example.com", "token"), WithMetrics(metrics))

	_, err := client.GetCalendars(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("getCalendars", http.MethodGet, "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.errorsTotal.WithLabelValues("getCalendars", "server")))
}

func TestDecodeError_UnexpectedBody(t *testing.T) {
	server := newStubServer(t, http.StatusOK, `{"data":{"id":"1"}}`)
	metrics := NewMetricsCollector(prometheus.NewRegistry())

	client := New(WithAPIBaseURL(server.URL), WithUser("me@example.com", "token"), WithMetrics(metrics))

	_, err := client.GetCalendars(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "getCalendars", decodeErr.Endpoint)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.errorsTotal.WithLabelValues("getCalendars", "decode")))
}

func TestDecodeError_MissingDataMember(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"no data member", http.StatusOK, `{"unexpected":[1,2]}`},
		{"empty body", http.StatusOK, ""},
		{"not an object", http.StatusOK, `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newStubServer(t, tt.status, tt.body)
			client := New(WithAPIBaseURL(server.URL), WithUser("me@example.com", "token"))

			resp, err := client.GetCalendars(context.Background())
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestNoContentEndpoint_IgnoresBody(t *testing.T) {
	server := newStubServer(t, http.StatusOK, `{"unexpected":true}`)
	client := New(WithAPIBaseURL(server.URL), WithUser("me@example.com", "token"))

	resp, err := client.SetUserProperties(context.Background(), map[string]string{"color": "blue"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestRawEndpoint_RequiresBody(t *testing.T) {
	server := newStubServer(t, http.StatusOK, "")
	client := New(WithAPIBaseURL(server.URL), WithUser("me@example.com", "token"))

	_, err := client.AccountSync(context.Background())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNilMetricsCollector(t *testing.T) {
	var metrics *MetricsCollector
	assert.NotPanics(t, func() {
		metrics.requestStarted("getCalendars", http.MethodGet)
		metrics.requestFinished("getCalendars", http.MethodGet)
		metrics.recordRequest("getCalendars", http.MethodGet, 200, 0)
		metrics.recordError("getCalendars", ErrServer)
	})
}

func TestLogger_DebugRequest(t *testing.T) {
	server := newStubServer(t, http.StatusNoContent, "")
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	client := New(WithAPIBaseURL(server.URL), WithUser("me@example.com", "token"), WithLogger(logger))

	resp, err := client.UpdateUser(context.Background(), UserUpdate{FirstName: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)

	out := buf.String()
	assert.Contains(t, out, `"endpoint":"updateUser"`)
	assert.Contains(t, out, `"status":204`)
	assert.NotContains(t, out, "token")
}
