package middleware

import (
	"CoachingAPI/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"math"
	"net/http"
	"sync"
	"time"
)

var (
	ErrTooManyRequests = response.NewError(http.StatusTooManyRequests, "too many requests")
)

const minLimiterIdleTTL = 10 * time.Minute

// rateLimiter keeps one token bucket per client IP. A bucket idle for longer
// than idleTTL is dropped; by then it would have refilled anyway.
type rateLimiter struct {
	bucket    *cache.Cache
	rate      rate.Limit
	burstSize int
	idleTTL   time.Duration
	mutex     *sync.Mutex
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return newRateLimiterWithTTL(reqRate, burstSize, limiterIdleTTL(reqRate, burstSize))
}

func newRateLimiterWithTTL(reqRate rate.Limit, burstSize int, idleTTL time.Duration) *rateLimiter {
	return &rateLimiter{
		bucket:    cache.New(idleTTL, idleTTL),
		rate:      reqRate,
		burstSize: burstSize,
		idleTTL:   idleTTL,
		mutex:     &sync.Mutex{},
	}
}

// limiterIdleTTL is at least the time an empty bucket needs to refill.
func limiterIdleTTL(reqRate rate.Limit, burstSize int) time.Duration {
	if reqRate <= 0 || reqRate == rate.Inf {
		return minLimiterIdleTTL
	}
	refill := float64(burstSize) / float64(reqRate) * float64(time.Second)
	if refill > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	if d := time.Duration(refill); d > minLimiterIdleTTL {
		return d
	}
	return minLimiterIdleTTL
}

func (r *rateLimiter) GetLimiterFrom(ip string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var limiter *rate.Limiter
	if cached, found := r.bucket.Get(ip); found {
		limiter = cached.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(r.rate, r.burstSize)
	}

	// Sliding expiry: every request pushes eviction back.
	r.bucket.Set(ip, limiter, r.idleTTL)

	return limiter
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()
	limiter := m.rateLimitter.GetLimiterFrom(clientIP)

	if !limiter.Allow() {
		m.log.Warnf("too many requests for IP %s", clientIP)
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": ErrTooManyRequests.Error(),
			"code":  "RATE_LIMITED",
		})
	}

	return ctx.Next()
}
