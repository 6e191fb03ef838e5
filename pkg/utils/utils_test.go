package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDFromTimestampIsMonotonic(t *testing.T) {
	u := New()
	now := time.Now()

	first, err := u.NewULIDFromTimestamp(now)
	require.NoError(t, err)
	second, err := u.NewULIDFromTimestamp(now)
	require.NoError(t, err)

	assert.Less(t, first, second)

	parsed, err := ulid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(now), parsed.Time())
}

func TestNewULIDFromTimestampConcurrent(t *testing.T) {
	u := New()
	seen := sync.Map{}
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := u.NewULIDFromTimestamp(time.Now())
			assert.NoError(t, err)
			_, dup := seen.LoadOrStore(id, struct{}{})
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}
