package boost

import (
	"context"
	"sync"
)

// OrderedBoostable maps f over its upstream, buffering tasks in a FIFO so
// that results are always emitted in source order regardless of which task
// happens to finish first.
type OrderedBoostable[T, R any] struct {
	ctx     context.Context
	f       MapFunc[T, R]
	src     Source[T]
	tok     *capacityToken
	metrics *executorMetrics

	mu     sync.Mutex
	buffer []*task[R]
}

func newOrderedBoostable[T, R any](ctx context.Context, f MapFunc[T, R], src Source[T], tok *capacityToken, metrics *executorMetrics) *OrderedBoostable[T, R] {
	return &OrderedBoostable[T, R]{ctx: ctx, f: f, src: src, tok: tok, metrics: metrics}
}

// AsSource lifts b so it can serve as another Boostable's upstream.
func (b *OrderedBoostable[T, R]) AsSource() Source[R] {
	return fromBoostable[R](b)
}

func (b *OrderedBoostable[T, R]) enqueue(arg T) {
	t := spawn(b.ctx, b.tok, b.metrics, b.f, arg)
	b.mu.Lock()
	b.buffer = append(b.buffer, t)
	b.mu.Unlock()
}

func (b *OrderedBoostable[T, R]) enqueueFailed(err error) {
	t := &task[R]{done: make(chan struct{})}
	t.err = err
	close(t.done)
	b.mu.Lock()
	b.buffer = append(b.buffer, t)
	b.mu.Unlock()
}

// provideBoost is the scheduling loop's entry point.
func (b *OrderedBoostable[T, R]) provideBoost() BoostOutcome {
	return dispatchBoost(b.src, b.enqueue, b.enqueueFailed, b.metrics)
}

// tryDequeue returns the front task's result only if that task is complete.
func (b *OrderedBoostable[T, R]) tryDequeue() (R, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero R
	if len(b.buffer) == 0 || !b.buffer[0].isDone() {
		return zero, false, nil
	}
	front := b.buffer[0]
	b.buffer = b.buffer[1:]
	v, err := front.result()
	return v, true, err
}

// blockingDequeue awaits the front task if needed, rechecking after the
// await since a racing dequeue may have popped it already.
func (b *OrderedBoostable[T, R]) blockingDequeue(ctx context.Context) (R, error) {
	for {
		b.mu.Lock()
		if len(b.buffer) == 0 {
			b.mu.Unlock()
			arg, err := nextFromSource(ctx, b.src)
			if err != nil {
				var zero R
				return zero, err
			}
			b.enqueue(arg)
			b.mu.Lock()
		}
		front := b.buffer[0]
		b.mu.Unlock()

		if v, ready, err := b.tryDequeue(); ready {
			return v, err
		}
		// dequeues are racy, so we can't assume front is still b.buffer[0];
		// just wait for this particular task and loop back to recheck.
		if err := front.wait(ctx); err != nil {
			var zero R
			return zero, err
		}
	}
}

// wait blocks until every currently-buffered task has completed.
func (b *OrderedBoostable[T, R]) wait(ctx context.Context) {
	b.mu.Lock()
	pending := append([]*task[R](nil), b.buffer...)
	b.mu.Unlock()
	waitAll(ctx, pending)
}

// Iterate returns a ResultIterator over b's results, performing the
// foreground-donation dance on Next/Close the same way every boostable's
// __aiter__ does.
func (b *OrderedBoostable[T, R]) Iterate(ctx context.Context) *ResultIterator[R] {
	return newResultIterator[R](ctx, b.tok, func(ctx context.Context) (R, error) {
		return b.blockingDequeue(ctx)
	})
}
