package boost

import "context"

// capacityToken is a counting gate bounding the number of tasks in flight.
// It is implemented as a channel buffered to size concurrency and
// pre-loaded with concurrency-1 tokens, rather than
// golang.org/x/sync/semaphore.Weighted: Weighted enforces acquired <= size
// and has no way to release a permit that was never acquired, which is
// exactly what the executor's foreground donation needs (see
// ResultIterator's release-on-construction/acquire-on-finish pair).
type capacityToken struct {
	slots chan struct{}
}

// newCapacityToken creates a token initialised to concurrency-1, matching
// asyncio.Semaphore(concurrency - 1) in the original: the one unit taken away
// is returned by a consumer iterator for the duration of its iteration. Every
// ResultIterator donates, including one created inside a running task, whose
// donation offsets the permit that task holds.
func newCapacityToken(concurrency int) *capacityToken {
	ct := &capacityToken{slots: make(chan struct{}, concurrency)}
	for i := 0; i < concurrency-1; i++ {
		ct.slots <- struct{}{}
	}
	return ct
}

// acquire blocks until a permit is available or ctx is cancelled.
func (c *capacityToken) acquire(ctx context.Context) error {
	select {
	case <-c.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release returns a permit. It never blocks: the channel is sized exactly to
// the configured concurrency, so a release can never overflow it as long as
// callers obey the one-permit-per-task and one-permit-donation disciplines.
func (c *capacityToken) release() {
	c.slots <- struct{}{}
}

// isEmpty reports whether zero permits are currently available.
func (c *capacityToken) isEmpty() bool {
	return len(c.slots) == 0
}

// withPermit runs fn while holding exactly one permit, acquiring it first and
// releasing it once fn returns, mirroring the `async with semaphore` wrapper
// the original installs around every mapping function call.
func withPermit[R any](ctx context.Context, tok *capacityToken, fn func() (R, error)) (R, error) {
	var zero R
	if err := tok.acquire(ctx); err != nil {
		return zero, err
	}
	defer tok.release()
	return fn()
}
