package callHandler_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CoachingAPI/database/sqlite"
	callHandler "CoachingAPI/internal/api/call/handler"
	callRepository "CoachingAPI/internal/api/call/repository"
	callService "CoachingAPI/internal/api/call/service"
	"CoachingAPI/internal/config"
	"CoachingAPI/internal/middleware"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := sqlite.New(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	mw := middleware.New(log, middleware.Options{RateLimitRPS: 1000, RateLimitBurst: 1000})
	cs := callService.NewCallService(log, callRepository.New(db, log), nil, nil)

	app := config.NewFiber(log, config.Config{CORSAllowOrigins: "*"})
	app.Use(mw.NewRequestIDMiddleware())
	callHandler.New(log, config.NewValidator(), mw, cs).Start(app.Group("/api"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, jsoniter.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestCreateAndGetCall(t *testing.T) {
	app := newApp(t)

	status, body := do(t, app, http.MethodPost, "/api/calls", `{"title":"Demo Call","duration":12.5}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Demo Call", body["title"])
	assert.Equal(t, []interface{}{}, body["analyses"])

	status, body = do(t, app, http.MethodGet, "/api/calls/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 12.5, body["duration"])
}

func TestCreateCallValidation(t *testing.T) {
	app := newApp(t)

	status, body := do(t, app, http.MethodPost, "/api/calls", `{"duration":-1}`)
	assert.Equal(t, http.StatusBadRequest, status)
	fields, ok := body["fields"].(map[string]interface{})
	require.True(t, ok, body)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "duration")

	status, _ = do(t, app, http.MethodPost, "/api/calls", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetCallErrors(t *testing.T) {
	app := newApp(t)

	status, body := do(t, app, http.MethodGet, "/api/calls/999", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, _ = do(t, app, http.MethodGet, "/api/calls/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/api/calls?page=x", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSummaryIsNotAnID(t *testing.T) {
	app := newApp(t)

	status, body := do(t, app, http.MethodGet, "/api/calls/summary", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["total_calls"])

	status, _ = do(t, app, http.MethodGet, "/api/objections/stats", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestChildrenAndResolve(t *testing.T) {
	app := newApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/calls", `{"title":"Demo Call"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, app, http.MethodPost, "/api/calls/1/analyses",
		`{"analysis_type":"coaching_feedback","content":"Good rapport","confidence_score":0.8}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(1), body["call_id"])

	status, body = do(t, app, http.MethodPost, "/api/calls/1/analyses",
		`{"analysis_type":"coaching_feedback","content":"x","confidence_score":1.5}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "confidence_score")

	status, body = do(t, app, http.MethodPost, "/api/calls/1/objections",
		`{"objection_text":"too expensive","objection_type":"price"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, body["is_resolved"])

	status, body = do(t, app, http.MethodPost, "/api/objections/1/resolve", `{"effectiveness_score":0.7}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_resolved"])
	assert.Equal(t, 0.7, body["effectiveness_score"])

	status, _ = do(t, app, http.MethodPost, "/api/objections/1/resolve", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodGet, "/api/objections/42", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateAndDeleteCall(t *testing.T) {
	app := newApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/calls", `{"title":"Before"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, app, http.MethodPatch, "/api/calls/1", `{"transcript":"hello"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Before", body["title"])
	assert.Equal(t, "hello", body["transcript"])

	status, body = do(t, app, http.MethodDelete, "/api/calls/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Call deleted successfully", body["message"])

	status, _ = do(t, app, http.MethodDelete, "/api/calls/1", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPost, "/api/calls/1/objections", `{"objection_text":"late"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListCallsPaging(t *testing.T) {
	app := newApp(t)

	for i := 0; i < 3; i++ {
		status, _ := do(t, app, http.MethodPost, "/api/calls", fmt.Sprintf(`{"title":"call %d"}`, i))
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := do(t, app, http.MethodGet, "/api/calls?page=1&limit=2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["total"])
	assert.Len(t, body["calls"], 2)
}
