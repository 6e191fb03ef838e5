package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	contextPkg "CoachingAPI/pkg/context"
	jwtPkg "CoachingAPI/pkg/jwt"
	"CoachingAPI/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRequestIDMiddleware(t *testing.T) {
	m := New(silentLogger(), Options{})
	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(contextPkg.GetRequestID(contextPkg.FromFiberCtx(c)) + "|" + m.GetRequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDHeader)
	assert.Len(t, generated, 26)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, generated+"|"+generated, string(body))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "caller-id", resp.Header.Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	m := New(silentLogger(), Options{RateLimitRPS: 0.001, RateLimitBurst: 2})
	app := fiber.New()
	app.Get("/", m.NewRateLimiter, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	r := newRateLimiterWithTTL(rate.Limit(1), 1, 50*time.Millisecond)

	first := r.GetLimiterFrom("10.0.0.1")
	assert.Same(t, first, r.GetLimiterFrom("10.0.0.1"))
	r.GetLimiterFrom("10.0.0.2")
	assert.Equal(t, 2, r.bucket.ItemCount())

	time.Sleep(100 * time.Millisecond)
	r.bucket.DeleteExpired()
	assert.Equal(t, 0, r.bucket.ItemCount())

	assert.NotSame(t, first, r.GetLimiterFrom("10.0.0.1"))
}

func TestLimiterIdleTTL(t *testing.T) {
	assert.Equal(t, minLimiterIdleTTL, limiterIdleTTL(50, 100))
	assert.Equal(t, minLimiterIdleTTL, limiterIdleTTL(rate.Inf, 1))
	assert.InDelta(t, float64(2000*time.Second), float64(limiterIdleTTL(0.001, 2)), float64(time.Millisecond))
}

func TestTokenMiddleware(t *testing.T) {
	newApp := func(enabled bool) *fiber.App {
		m := New(silentLogger(), Options{AuthEnabled: enabled, Secret: "secret"})
		app := fiber.New()
		app.Get("/", m.NewTokenMiddleware, func(c *fiber.Ctx) error {
			subject, _ := jwtPkg.GetSubject(c)
			return c.SendString(subject)
		})
		return app
	}

	resp, err := newApp(false).Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	app := newApp(true)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	bad, _, err := jwtPkg.Sign("other", "coach-1", nil, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	good, _, err := jwtPkg.Sign("secret", "coach-1", nil, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+good)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "coach-1", string(body))
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	reg := metrics.New()
	m := New(silentLogger(), Options{Metrics: reg})
	app := fiber.New()
	app.Use(m.NewMetricsMiddleware())
	app.Get("/api/calls/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })

	for _, path := range []string{"/api/calls/1", "/api/calls/2"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	count, err := testutil.GatherAndCount(reg.Registry(), "coaching_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSanitizeRequestBody(t *testing.T) {
	out := sanitizeRequestBody(`{"title":"Demo","api_key":"abc","webhook_secret":"s"}`)
	assert.Contains(t, out, `"title":"Demo"`)
	assert.NotContains(t, out, "abc")
	assert.NotContains(t, out, `"s"`)

	assert.Equal(t, "[non-JSON body]", sanitizeRequestBody("not json"))
}
