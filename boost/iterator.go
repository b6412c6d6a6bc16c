package boost

import "context"

// ResultIterator is the consumer-facing protocol for pulling results out of
// a boostable: Next advances, Value/Err inspect the slot Next just produced.
//
// Next returns false only once the upstream has genuinely terminated (or
// the iterator's context is cancelled) — never merely because the task for
// the current slot failed. A mapping-function failure still produces a
// slot: Next returns true, Value is the zero value, and Err reports the
// failure. This is a deliberate departure from the database/sql.Rows
// convention of folding "done" and "errored" into the same false return: it
// keeps a real failure from masking the rest of a pipeline the way a
// generic end-of-sequence exception could in the source this is ported
// from, at the cost of requiring callers to check Err() on every iteration
// rather than only after the loop.
type ResultIterator[R any] struct {
	ctx  context.Context
	tok  *capacityToken
	pull func(context.Context) (R, error)

	done bool
	cur  R
	err  error
}

func newResultIterator[R any](ctx context.Context, tok *capacityToken, pull func(context.Context) (R, error)) *ResultIterator[R] {
	// Foreground donation: iterating the outermost boostable temporarily
	// raises effective concurrency from C-1 to C for as long as iteration
	// continues.
	tok.release()
	return &ResultIterator[R]{ctx: ctx, tok: tok, pull: pull}
}

// Next pulls the next slot. It returns false once the upstream has
// terminated or the iterator's context has been cancelled; once it returns
// false, it will keep returning false.
func (it *ResultIterator[R]) Next() bool {
	if it.done {
		return false
	}
	if it.ctx.Err() != nil {
		it.err = it.ctx.Err()
		it.finish()
		return false
	}
	v, err := it.pull(it.ctx)
	if err != nil {
		if err == ErrExhausted {
			it.err = nil
			it.finish()
			return false
		}
		var zero R
		it.cur = zero
		it.err = err
		return true
	}
	it.cur = v
	it.err = nil
	return true
}

// Value returns the result produced by the most recent call to Next. It is
// meaningless if Err is non-nil or Next has not been called.
func (it *ResultIterator[R]) Value() R { return it.cur }

// Err reports the failure, if any, associated with the current slot.
func (it *ResultIterator[R]) Err() error { return it.err }

// Close returns the donated foreground permit early, for a consumer that
// stops iterating before Next reports exhaustion. Calling it more than once,
// or after Next has already returned false, is a no-op.
func (it *ResultIterator[R]) Close() {
	it.finish()
}

func (it *ResultIterator[R]) finish() {
	if it.done {
		return
	}
	it.done = true
	// Unconditional, uncancellable: the donated permit must always be
	// returned, mirroring the bare `await self.semaphore.acquire()` in the
	// original's iterator finally-block.
	_ = it.tok.acquire(context.Background())
}
