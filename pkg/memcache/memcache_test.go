package memcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimOnce(t *testing.T) {
	s := New(time.Hour, 0)
	ctx := context.Background()

	first, err := s.Claim(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := s.Claim(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	require.NoError(t, s.Release(ctx, "evt-1"))
	again, err := s.Claim(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, again)
}

func TestClaimExpires(t *testing.T) {
	s := New(time.Hour, 0)
	ctx := context.Background()

	_, err := s.Claim(ctx, "evt-1", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	claimed, err := s.Claim(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaimConcurrent(t *testing.T) {
	s := New(time.Hour, 0)
	var wins int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Claim(context.Background(), "evt-1", time.Hour); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, 1, s.Len())
}
