package boost

import "errors"

// ErrExhausted signals that an upstream source has produced its last
// element. It is never returned to a caller of ResultIterator.Err; it is
// strictly an internal control-flow sentinel threaded through nextFromSource
// and blockingDequeue, analogous to Python's StopAsyncIteration.
var ErrExhausted = errors.New("boost: source exhausted")

// ErrBadConcurrency is returned by NewExecutor when concurrency < 1.
var ErrBadConcurrency = errors.New("boost: concurrency must be >= 1")
