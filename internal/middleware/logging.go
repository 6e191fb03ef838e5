package middleware

import (
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

// NewLoggingMiddleware writes one access log line per request.
func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		requestID, ok := c.Locals(contextPkg.RequestIDLocal).(string)
		if !ok || requestID == "" {
			requestID = "unknown"
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		logFields := log.Fields{
			"request_id":    requestID,
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get("User-Agent"),
			"response_size": len(c.Response().Body()),
		}

		if body := c.Request().Body(); len(body) > 0 {
			logFields["request_body"] = sanitizeRequestBody(string(body))
		}

		entry := m.log.WithFields(logFields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Success")
		}

		return err
	}
}

var sensitiveFields = []string{
	"password", "token", "secret", "key", "auth",
	"credential", "authorization", "signature",
}

// maxLoggedTranscript keeps call transcripts from flooding the access log.
const maxLoggedTranscript = 256

func sanitizeRequestBody(body string) string {
	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal([]byte(body), &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	for field := range jsonBody {
		lower := strings.ToLower(field)
		for _, sensitive := range sensitiveFields {
			if strings.Contains(lower, sensitive) {
				jsonBody[field] = "[SECRET]"
				break
			}
		}
	}

	if transcript, ok := jsonBody["transcript"].(string); ok && len(transcript) > maxLoggedTranscript {
		jsonBody["transcript"] = transcript[:maxLoggedTranscript] + "...[truncated]"
	}

	sanitized, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}
