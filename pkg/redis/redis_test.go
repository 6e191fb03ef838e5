package redis

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestClaimFailsWithoutServer(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	client := New(log, Options{Address: "127.0.0.1:1"})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	claimed, err := client.Claim(ctx, "evt-1", time.Minute)
	assert.Error(t, err)
	assert.False(t, claimed)
	assert.Error(t, client.Ping(ctx))
}
