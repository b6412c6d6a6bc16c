package boost

import (
	"context"
	"sync"

	"github.com/tiffanycitra/boostedblob/internal/gopool"
)

// UnorderedBoostable maps f over its upstream, emitting results in
// completion order rather than source order. Its buffer is a set of
// in-flight tasks plus a one-shot "any task completed" waiter that gets
// installed fresh each time blockingDequeue has to wait.
type UnorderedBoostable[T, R any] struct {
	ctx     context.Context
	f       MapFunc[T, R]
	src     Source[T]
	tok     *capacityToken
	metrics *executorMetrics

	mu     sync.Mutex
	buffer map[*task[R]]struct{}
	waiter chan *task[R]
}

func newUnorderedBoostable[T, R any](ctx context.Context, f MapFunc[T, R], src Source[T], tok *capacityToken, metrics *executorMetrics) *UnorderedBoostable[T, R] {
	return &UnorderedBoostable[T, R]{ctx: ctx, f: f, src: src, tok: tok, metrics: metrics, buffer: make(map[*task[R]]struct{})}
}

// AsSource lifts b so it can serve as another Boostable's upstream.
func (b *UnorderedBoostable[T, R]) AsSource() Source[R] {
	return fromBoostable[R](b)
}

// addTask registers t in the buffer and arranges for a pending waiter to be
// signalled as soon as t completes — the Go equivalent of
// task.add_done_callback(self.done_callback).
func (b *UnorderedBoostable[T, R]) addTask(t *task[R]) {
	b.mu.Lock()
	b.buffer[t] = struct{}{}
	b.mu.Unlock()

	gopool.Submit(func() {
		<-t.done
		b.mu.Lock()
		w := b.waiter
		b.mu.Unlock()
		if w != nil {
			select {
			case w <- t:
			default:
			}
		}
	})
}

func (b *UnorderedBoostable[T, R]) enqueue(arg T) *task[R] {
	t := spawn(b.ctx, b.tok, b.metrics, b.f, arg)
	b.addTask(t)
	return t
}

func (b *UnorderedBoostable[T, R]) enqueueFailed(err error) {
	t := &task[R]{done: make(chan struct{})}
	t.err = err
	close(t.done)
	b.addTask(t)
}

func (b *UnorderedBoostable[T, R]) provideBoost() BoostOutcome {
	return dispatchBoost(b.src, func(arg T) { b.enqueue(arg) }, b.enqueueFailed, b.metrics)
}

// tryDequeue is the interface-facing, hint-less variant.
func (b *UnorderedBoostable[T, R]) tryDequeue() (R, bool, error) {
	return b.tryDequeueHint(nil)
}

// tryDequeueHint accepts a task we suspect is dequeuable, letting the
// common case skip a linear scan of the whole buffer; the hint is purely
// advisory since a peer dequeue may have taken it first.
func (b *UnorderedBoostable[T, R]) tryDequeueHint(hint *task[R]) (R, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero R

	chosen := hint
	if chosen != nil {
		if _, ok := b.buffer[chosen]; !ok || !chosen.isDone() {
			chosen = nil
		}
	}
	if chosen == nil {
		for t := range b.buffer {
			if t.isDone() {
				chosen = t
				break
			}
		}
	}
	if chosen == nil {
		return zero, false, nil
	}
	delete(b.buffer, chosen)
	v, err := chosen.result()
	return v, true, err
}

// blockingDequeue installs a fresh waiter and awaits it, using whatever task
// it receives as the hint for the next non-blocking dequeue attempt.
func (b *UnorderedBoostable[T, R]) blockingDequeue(ctx context.Context) (R, error) {
	var hint *task[R]
	for {
		b.mu.Lock()
		empty := len(b.buffer) == 0
		b.mu.Unlock()
		if empty {
			arg, err := nextFromSource(ctx, b.src)
			if err != nil {
				var zero R
				return zero, err
			}
			hint = b.enqueue(arg)
		}

		if v, ready, err := b.tryDequeueHint(hint); ready {
			return v, err
		}

		// Install the waiter before rechecking readiness, not after: a task
		// that completes between the tryDequeueHint above and this point
		// would otherwise signal a waiter that isn't installed yet, and
		// addTask's done callback only ever fires once (it reads b.waiter a
		// single time after <-t.done), so that wakeup would be lost forever.
		// Registering first and rechecking second closes the window.
		w := make(chan *task[R], 1)
		b.mu.Lock()
		b.waiter = w
		b.mu.Unlock()

		if v, ready, err := b.tryDequeueHint(hint); ready {
			b.mu.Lock()
			b.waiter = nil
			b.mu.Unlock()
			return v, err
		}

		select {
		case t := <-w:
			hint = t
		case <-ctx.Done():
			b.mu.Lock()
			b.waiter = nil
			b.mu.Unlock()
			var zero R
			return zero, ctx.Err()
		}
		b.mu.Lock()
		b.waiter = nil
		b.mu.Unlock()
	}
}

func (b *UnorderedBoostable[T, R]) wait(ctx context.Context) {
	b.mu.Lock()
	pending := make([]*task[R], 0, len(b.buffer))
	for t := range b.buffer {
		pending = append(pending, t)
	}
	b.mu.Unlock()
	waitAll(ctx, pending)
}

// Iterate returns a ResultIterator over b's results.
func (b *UnorderedBoostable[T, R]) Iterate(ctx context.Context) *ResultIterator[R] {
	return newResultIterator[R](ctx, b.tok, func(ctx context.Context) (R, error) {
		return b.blockingDequeue(ctx)
	})
}
