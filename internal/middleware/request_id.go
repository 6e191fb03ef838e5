package middleware

import (
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"time"
)

const RequestIDHeader = "X-Request-ID"

func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)

		if requestID == "" {
			requestID, _ = utilsInstance.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(contextPkg.RequestIDLocal, requestID)
		c.Set(RequestIDHeader, requestID)
		c.SetUserContext(contextPkg.WithRequestID(c.UserContext(), requestID))

		return c.Next()
	}
}
