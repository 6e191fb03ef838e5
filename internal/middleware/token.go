package middleware

import (
	jwtPkg "CoachingAPI/pkg/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"strings"
)

type tokenMiddleware struct {
	enabled bool
	secret  string
}

func newTokenMiddleware(enabled bool, secret string) *tokenMiddleware {
	return &tokenMiddleware{
		enabled: enabled,
		secret:  secret,
	}
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized, access token invalid or expired",
		"code":  "UNAUTHORIZED",
	})
}

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	if !m.token.enabled {
		return ctx.Next()
	}

	requestID := m.GetRequestID(ctx)
	authHeader := ctx.Get("Authorization")

	if !strings.HasPrefix(authHeader, "Bearer ") {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"client_ip":  ctx.IP(),
		}).Warn("Authorization header missing or malformed")
		return unauthorized(ctx)
	}

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, m.token.secret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Token verification failed")
		return unauthorized(ctx)
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Invalid token claims")
		return unauthorized(ctx)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Token has no subject")
		return unauthorized(ctx)
	}

	ctx.Locals(jwtPkg.SubjectLocal, subject)

	m.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"subject":    subject,
	}).Debug("Authentication successful")
	return ctx.Next()
}
