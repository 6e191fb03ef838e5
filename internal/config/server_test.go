package config

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg, err := LoadFrom(env(map[string]string{
		"DATABASE_DRIVER": "sqlite3",
		"DATABASE_URL":    fmt.Sprintf("file:server_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}))
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	server, err := NewServer(
		WithConfig(cfg),
		WithFiber(NewFiber(logger, cfg)),
		WithLogger(logger),
		WithValidator(NewValidator()),
		WithDatabase(),
		WithMessaging(),
		WithS3Client(),
		WithMetrics(),
		WithMiddleware(),
		WithUtils(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.db.Close() })

	server.RegisterHandler()
	return server
}

func TestNewServerRequiresConfig(t *testing.T) {
	_, err := NewServer(WithLogger(logrus.New()), WithFiber(NewFiber(logrus.New(), Config{})))
	assert.Error(t, err)

	_, err = NewServer(WithDatabase())
	assert.Error(t, err)
}

func TestRootAndHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := server.engine.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"message":"Mosquito Mike Coaching API"}`, string(body))

	resp, err = server.engine.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestHealthReportsUnavailableDatabase(t *testing.T) {
	server := newTestServer(t)
	require.NoError(t, server.db.Close())

	resp, err := server.engine.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestMetricsExposeRequests(t *testing.T) {
	server := newTestServer(t)

	resp, err := server.engine.Test(httptest.NewRequest("GET", "/api/calls", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = server.engine.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `coaching_http_requests_total{method="GET",route="/api/calls",status="200"} 1`)
	assert.Contains(t, string(body), `coaching_store_operations_total{operation="list_calls",result="ok"} 1`)
}

func TestWebhookFlowThroughServer(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/webhooks/call-completed",
		strings.NewReader(`{"event_id":"evt-1","title":"Inbound","duration":3.5}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.engine.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = server.engine.Test(httptest.NewRequest("GET", "/api/calls/1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"title":"Inbound"`)
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
