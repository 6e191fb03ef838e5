package jwtPkg

import (
	"errors"
	"fmt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"strings"
	"time"
)

const SubjectLocal = "subject"

// Sign issues an HS256 token for subject. Extra data lands in the claims as is.
func Sign(secret, subject string, data map[string]interface{}, expiresIn time.Duration) (string, int64, error) {
	if secret == "" {
		return "", 0, errors.New("jwt secret not configured")
	}
	if subject == "" {
		return "", 0, errors.New("jwt subject is required")
	}

	expiredAt := time.Now().Add(expiresIn).Unix()

	claims := jwt.MapClaims{}
	for k, v := range data {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["exp"] = expiredAt
	claims["iat"] = time.Now().Unix()

	logrus.WithField("subject", subject).Debug("Creating token")

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

func VerifyTokenHeader(c *fiber.Ctx, secret string) (*jwt.Token, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, errors.New("empty Authorization header")
	}

	accessToken, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, errors.New("invalid Authorization format")
	}

	return Verify(strings.TrimSpace(accessToken), secret)
}

func Verify(accessToken, secret string) (*jwt.Token, error) {
	log := logrus.WithField("func", "Verify")

	if accessToken == "" {
		return nil, errors.New("empty token")
	}
	if secret == "" {
		log.Error("JWT secret not configured")
		return nil, errors.New("JWT secret not configured")
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.WithField("method", token.Header["alg"]).Warn("Unexpected signing method")
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	return token, nil
}

func GetSubject(c *fiber.Ctx) (string, error) {
	subject, ok := c.Locals(SubjectLocal).(string)
	if !ok || subject == "" {
		return "", fiber.ErrUnauthorized
	}
	return subject, nil
}
