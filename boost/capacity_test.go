package boost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapacityTokenInitialValue(t *testing.T) {
	tok := newCapacityToken(3)
	assert.False(t, tok.isEmpty())

	ctx := context.Background()
	require.NoError(t, tok.acquire(ctx))
	require.NoError(t, tok.acquire(ctx))
	assert.True(t, tok.isEmpty())
}

func TestCapacityTokenAcquireBlocksUntilRelease(t *testing.T) {
	tok := newCapacityToken(1)
	ctx := context.Background()
	require.NoError(t, tok.acquire(ctx))
	assert.True(t, tok.isEmpty())

	acquired := make(chan struct{})
	go func() {
		_ = tok.acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("acquire should have blocked with zero permits available")
	case <-time.After(20 * time.Millisecond):
	}

	tok.release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire did not unblock after release")
	}
}

func TestCapacityTokenDonation(t *testing.T) {
	// concurrency 1 starts at 0 permits; a donation (release with no prior
	// acquire) must make exactly one permit available, matching the
	// foreground-donation pattern.
	tok := newCapacityToken(1)
	assert.True(t, tok.isEmpty())
	tok.release()
	assert.False(t, tok.isEmpty())
	require.NoError(t, tok.acquire(context.Background()))
	assert.True(t, tok.isEmpty())
}

func TestCapacityTokenAcquireRespectsContext(t *testing.T) {
	tok := newCapacityToken(1)
	require.NoError(t, tok.acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := tok.acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
