package boost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedTryDequeueOnlyFrontWhenDone(t *testing.T) {
	tok := newCapacityToken(4)
	release := make(chan struct{})
	b := newOrderedBoostable(context.Background(), func(ctx context.Context, x int) (int, error) {
		if x == 1 {
			<-release
		}
		return x, nil
	}, FromSlice([]int{1, 2}), tok, nil)

	require.Equal(t, Started, b.provideBoost())
	require.Equal(t, Started, b.provideBoost())
	require.Equal(t, Exhausted, b.provideBoost())

	// Front task (x==1) is blocked on release, so the buffer must report
	// NotReady even though the second task has already finished.
	_, ready, _ := b.tryDequeue()
	assert.False(t, ready)

	close(release)
	require.Eventually(t, func() bool {
		_, ready, _ := b.tryDequeue()
		return ready
	}, time.Second, time.Millisecond)

	v, ready, err := b.tryDequeue()
	require.True(t, ready)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestOrderedBlockingDequeueOrder(t *testing.T) {
	tok := newCapacityToken(4)
	b := newOrderedBoostable(context.Background(), func(ctx context.Context, x int) (int, error) {
		return x * x, nil
	}, FromSlice([]int{1, 2, 3}), tok, nil)

	ctx := context.Background()
	var got []int
	for i := 0; i < 3; i++ {
		v, err := b.blockingDequeue(ctx)
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 4, 9}, got)

	_, err := b.blockingDequeue(ctx)
	assert.ErrorIs(t, err, ErrExhausted)
}
