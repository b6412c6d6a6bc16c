package boost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEagerSourceNextDeliversInOrder(t *testing.T) {
	vals := []int{1, 2, 3}
	idx := 0
	pull := func(ctx context.Context) (int, error) {
		if idx >= len(vals) {
			return 0, ErrExhausted
		}
		v := vals[idx]
		idx++
		return v, nil
	}

	e := NewEagerSource(context.Background(), pull)
	for _, want := range vals {
		got, err := e.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := e.Next(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestEagerSourceTryDequeueNotReadyThenReady(t *testing.T) {
	release := make(chan struct{})
	pull := func(ctx context.Context) (int, error) {
		<-release
		return 42, nil
	}
	e := NewEagerSource(context.Background(), pull)

	_, state, _ := e.TryDequeue()
	assert.Equal(t, dqNotReady, state)

	close(release)
	require.Eventually(t, func() bool {
		_, state, _ := e.TryDequeue()
		return state == dqReady
	}, time.Second, time.Millisecond)
}

func TestPullFromChannelReportsExhaustedOnClose(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	close(ch)

	pull := PullFromChannel(ch)
	v, err := pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = pull(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)
}
