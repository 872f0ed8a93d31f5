package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	lim := New(1, 100)

	release, err := lim.Acquire(context.Background())
	require.NoError(t, err)

	// slot taken: second acquire must block until released
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = lim.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	release2, err := lim.Acquire(context.Background())
	require.NoError(t, err)
	release2()
}

func TestTryAcquire(t *testing.T) {
	lim := New(1, 100)

	release, ok := lim.TryAcquire()
	require.True(t, ok)

	_, ok = lim.TryAcquire()
	assert.False(t, ok)

	release()

	release2, ok := lim.TryAcquire()
	assert.True(t, ok)
	if ok {
		release2()
	}
}
