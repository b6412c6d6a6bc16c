package boost

import (
	"context"
	"sync"

	"github.com/tiffanycitra/boostedblob/internal/gopool"
)

// PullFunc produces the next element of a lazy async source. It must return
// ErrExhausted once the source is spent; any other non-nil error is treated
// as a genuine failure of the upstream source itself, not of a mapping
// function, and is surfaced the same way exhaustion is (see EagerSource.Next
// and EagerSource.TryDequeue).
type PullFunc[T any] func(ctx context.Context) (T, error)

// eagerTask is one link of the prefetch chain: a background pull plus,
// chained once it succeeds, the task computing the following pull. This is
// the Go shape of Python's `eagerify`, which recurses into its own successor
// before returning (val, next_task).
type eagerTask[T any] struct {
	done      chan struct{}
	val       T
	err       error
	successor *eagerTask[T]
}

func (t *eagerTask[T]) isDone() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *eagerTask[T]) wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func spawnEagerTask[T any](ctx context.Context, pull PullFunc[T]) *eagerTask[T] {
	t := &eagerTask[T]{done: make(chan struct{})}
	gopool.Submit(func() {
		v, err := pull(ctx)
		t.err = err
		if err == nil {
			t.val = v
			t.successor = spawnEagerTask(ctx, pull)
		}
		close(t.done)
	})
	return t
}

// EagerSource wraps a lazy PullFunc so it can serve as the upstream of a
// Boostable: it immediately spawns a prefetch of the next element, and spawns
// its successor prefetch as soon as one completes, so a non-blocking
// readiness check (TryDequeue) is always possible. This permanently consumes
// one unit of ambient concurrency not accounted for by any capacityToken;
// callers must budget for it.
type EagerSource[T any] struct {
	mu  sync.Mutex
	cur *eagerTask[T]
}

// NewEagerSource starts the prefetch chain for pull.
func NewEagerSource[T any](ctx context.Context, pull PullFunc[T]) *EagerSource[T] {
	return &EagerSource[T]{cur: spawnEagerTask(ctx, pull)}
}

// PullFromChannel adapts a channel into a PullFunc, treating channel close
// as ErrExhausted — the common case of a lazy async source in Go.
func PullFromChannel[T any](ch <-chan T) PullFunc[T] {
	return func(ctx context.Context) (T, error) {
		var zero T
		select {
		case v, ok := <-ch:
			if !ok {
				return zero, ErrExhausted
			}
			return v, nil
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// TryDequeue is the non-blocking half of the adapter: if the current
// prefetch hasn't completed, NotReady; otherwise swap in the successor
// prefetch and return the value, or report exhaustion.
func (e *EagerSource[T]) TryDequeue() (T, dequeueState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero T
	cur := e.cur
	if !cur.isDone() {
		return zero, dqNotReady, nil
	}
	if cur.err != nil {
		if cur.err == ErrExhausted {
			return zero, dqExhausted, nil
		}
		return zero, dqExhausted, cur.err
	}
	e.cur = cur.successor
	return cur.val, dqReady, nil
}

// Next is the blocking half: await the current prefetch, then swap it.
// Rereads e.cur under lock each time, since dequeues here are racy with
// TryDequeue calls from the scheduling loop.
func (e *EagerSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		e.mu.Lock()
		cur := e.cur
		e.mu.Unlock()
		if err := cur.wait(ctx); err != nil {
			return zero, err
		}
		e.mu.Lock()
		if e.cur != cur {
			// a racing TryDequeue already consumed this step; retry against
			// whatever is current now.
			e.mu.Unlock()
			continue
		}
		if cur.err != nil {
			e.mu.Unlock()
			return zero, cur.err
		}
		e.cur = cur.successor
		e.mu.Unlock()
		return cur.val, nil
	}
}
