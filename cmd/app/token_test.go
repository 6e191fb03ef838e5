package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"CoachingAPI/internal/config"
	jwtPkg "CoachingAPI/pkg/jwt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCommandMintsVerifiableToken(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	a := &app{
		cfg:    config.Config{Auth: config.AuthConfig{SecretKey: "secret"}},
		logger: logger,
	}

	cmd := tokenCommand(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--subject", "coach-7", "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	parsed, err := jwtPkg.Verify(strings.TrimSpace(out.String()), "secret")
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "coach-7", claims["sub"])
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestTokenCommandRequiresSubject(t *testing.T) {
	a := &app{cfg: config.Config{Auth: config.AuthConfig{SecretKey: "secret"}}, logger: logrus.New()}

	cmd := tokenCommand(a)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
