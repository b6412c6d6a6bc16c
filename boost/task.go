package boost

import (
	"context"

	"github.com/tiffanycitra/boostedblob/internal/gopool"
)

// task is the Go stand-in for an asyncio.Task[R]: a unit of work running on
// the shared goroutine pool whose completion can be polled non-blockingly
// (isDone) or awaited (wait). Every task created by a boostable wraps its
// call to f in withPermit, so a running task always holds exactly one
// capacity permit for its duration.
type task[R any] struct {
	done chan struct{}
	val  R
	err  error
}

func newTask[R any](fn func() (R, error)) *task[R] {
	t := &task[R]{done: make(chan struct{})}
	gopool.Submit(func() {
		t.val, t.err = fn()
		close(t.done)
	})
	return t
}

// spawn starts f(arg) under the capacity token, exactly as Boostable.enqueue
// wraps func in `async with semaphore: return await func(arg)`. inFlight is
// incremented only once the permit is actually held, not merely requested,
// so Metrics().InFlight reports tasks genuinely running f rather than tasks
// still queued behind the capacity token.
func spawn[T, R any](ctx context.Context, tok *capacityToken, metrics *executorMetrics, f func(context.Context, T) (R, error), arg T) *task[R] {
	return newTask(func() (R, error) {
		return withPermit(ctx, tok, func() (R, error) {
			if metrics != nil {
				metrics.inFlight.Inc()
				defer metrics.inFlight.Dec()
			}
			return f(ctx, arg)
		})
	})
}

func (t *task[R]) isDone() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// wait blocks until the task completes or ctx is cancelled.
func (t *task[R]) wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *task[R]) result() (R, error) {
	return t.val, t.err
}

// waitAll blocks until every task in tasks has completed, the equivalent of
// `await asyncio.wait(self.buffer)` used by both boostable flavours' wait().
func waitAll[R any](ctx context.Context, tasks []*task[R]) {
	for _, t := range tasks {
		_ = t.wait(ctx)
	}
}
