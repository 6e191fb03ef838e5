package log

import (
	"bytes"
	"context"
	"testing"

	contextPkg "CoachingAPI/pkg/context"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	l := NewLogger(Options{Level: "debug", Environment: "test"})
	buf := &bytes.Buffer{}
	prev := l.Out
	l.SetOutput(buf)
	t.Cleanup(func() { l.SetOutput(prev) })
	return buf
}

func TestErrorWithTraceIDReusesRequestID(t *testing.T) {
	buf := captureLogger(t)

	traceID := ErrorWithTraceID(Fields{"request_id": "01HZY"}, "boom")

	assert.Equal(t, "01HZY", traceID)
	assert.Contains(t, buf.String(), "trace_id:01HZY")
}

func TestErrorWithTraceIDGeneratesUUID(t *testing.T) {
	buf := captureLogger(t)

	traceID := ErrorWithTraceID(nil, "boom")

	_, err := uuid.Parse(traceID)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), traceID)
}

func TestWithRequestID(t *testing.T) {
	captureLogger(t)

	entry := WithRequestID(contextPkg.WithRequestID(context.Background(), "req-1"))
	assert.Equal(t, "req-1", entry.Data["request_id"])

	entry = WithRequestID(context.Background())
	assert.Equal(t, "unknown", entry.Data["request_id"])
}
