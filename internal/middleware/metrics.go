package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// NewMetricsMiddleware records request counts and latency labelled by the
// matched route pattern, so ids in the path do not explode cardinality.
func (m *middleware) NewMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.metrics == nil {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		} else if c.Path() == "/" {
			route = "/"
		}

		m.metrics.ObserveHTTPRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
