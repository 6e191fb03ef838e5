package webhookHandler_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CoachingAPI/database/sqlite"
	callRepository "CoachingAPI/internal/api/call/repository"
	callService "CoachingAPI/internal/api/call/service"
	webhookHandler "CoachingAPI/internal/api/webhook/handler"
	webhookService "CoachingAPI/internal/api/webhook/service"
	"CoachingAPI/internal/config"
	"CoachingAPI/internal/middleware"
	"CoachingAPI/pkg/memcache"
	"CoachingAPI/pkg/messaging"
	"CoachingAPI/pkg/utils"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := sqlite.New(fmt.Sprintf("file:webhook_handler_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	mw := middleware.New(log, middleware.Options{RateLimitRPS: 1000, RateLimitBurst: 1000})
	cs := callService.NewCallService(log, callRepository.New(db, log), nil, nil)
	ws := webhookService.NewWebhookService(
		log, cs, memcache.New(time.Hour, 0), messaging.NewNoopPublisher(log), utils.New(), time.Hour, nil,
	)

	app := config.NewFiber(log, config.Config{CORSAllowOrigins: "*"})
	app.Use(mw.NewRequestIDMiddleware())
	webhookHandler.New(log, config.NewValidator(), mw, ws).Start(app.Group("/api"))
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
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

func TestCallCompletedWebhook(t *testing.T) {
	app := newApp(t)

	status, body := post(t, app, "/api/webhooks/call-completed", `{"event_id":"evt-1","title":"Inbound"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["duplicate"])
	call, ok := body["call"].(map[string]interface{})
	require.True(t, ok, body)
	assert.Equal(t, "Inbound", call["title"])

	status, body = post(t, app, "/api/webhooks/call-completed", `{"event_id":"evt-1","title":"Inbound"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])
}

func TestCallCompletedWebhookRejectsBadPayloads(t *testing.T) {
	app := newApp(t)

	status, _ := post(t, app, "/api/webhooks/call-completed", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := post(t, app, "/api/webhooks/call-completed", `{"event_id":"evt-2"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "title")

	status, _ = post(t, app, "/api/webhooks/call-completed", `{"call_id":99,"transcript":"x"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAnalysisReadyWebhook(t *testing.T) {
	app := newApp(t)

	status, _ := post(t, app, "/api/webhooks/call-completed", `{"title":"Demo Call"}`)
	require.Equal(t, http.StatusOK, status)

	payload := `{"event_id":"a-1","call_id":1,"analysis_type":"coaching_feedback","content":"Pause more",
		"objections":[{"objection_text":"need to think","objection_type":"stall"}]}`

	status, body := post(t, app, "/api/webhooks/analysis-ready", payload)
	require.Equal(t, http.StatusCreated, status)
	assert.Len(t, body["objections"], 1)

	status, body = post(t, app, "/api/webhooks/analysis-ready", payload)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])

	status, body = post(t, app, "/api/webhooks/analysis-ready",
		`{"call_id":1,"analysis_type":"coaching_feedback","content":"x","objections":[{"objection_type":"price"}]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["fields"])
}
