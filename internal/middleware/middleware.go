package middleware

import (
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	NewMetricsMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	// AuthEnabled turns NewTokenMiddleware from a pass-through into a bearer check.
	AuthEnabled bool
	Secret      string
	Metrics     *metrics.Metrics
}

type middleware struct {
	token               *tokenMiddleware
	rateLimitter        *rateLimiter
	requestIDMiddleware fiber.Handler
	metrics             *metrics.Metrics
	log                 *logrus.Logger
}

func New(logger *logrus.Logger, opts Options) Middleware {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 50
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 100
	}

	return &middleware{
		token:               newTokenMiddleware(opts.AuthEnabled, opts.Secret),
		rateLimitter:        newRateLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst),
		requestIDMiddleware: NewRequestIDMiddleware(),
		metrics:             opts.Metrics,
		log:                 logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(contextPkg.RequestIDLocal).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}
