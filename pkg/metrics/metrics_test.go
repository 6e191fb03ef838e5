package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStoreOperation(t *testing.T) {
	m := New()

	m.ObserveStoreOperation("create_call", "ok")
	m.ObserveStoreOperation("create_call", "ok")
	m.ObserveStoreOperation("create_call", "invalid")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeOperations.WithLabelValues("create_call", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOperations.WithLabelValues("create_call", "invalid")))
}

func TestObserveHTTPRequest(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest("GET", "/api/calls/:id", 404, 3*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/calls/:id", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpRequestDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStoreOperation("get_call", "ok")
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveWebhookDelivery("call_completed", "ok")
	})
}
