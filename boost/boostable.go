package boost

import "context"

// MapFunc is the shape of the function a boostable applies to each element
// of its upstream. It takes the ambient context so long-running f can honor
// cancellation, mirroring func(T) -> Awaitable[R] in the original.
type MapFunc[T, R any] func(ctx context.Context, arg T) (R, error)

// dispatchBoost implements the body of Boostable.provide_boost shared by
// both the ordered and unordered flavours: extract one element from src
// without suspending, hand it to enqueue, and report the outcome. The
// element must be pulled before enqueue ever suspends, so that any
// ordering-sensitive side effect inside enqueue (e.g. an index increment)
// observes source order — enqueue here only ever does a non-blocking
// channel send to start a goroutine, so that invariant holds trivially.
func dispatchBoost[T any](src Source[T], enqueueValue func(T), enqueueFailed func(error), metrics *executorMetrics) BoostOutcome {
	switch src.kind {
	case sourceKindIterator:
		v, ok := src.iter.Next()
		if !ok {
			return Exhausted
		}
		enqueueValue(v)
		return Started

	case sourceKindEager:
		v, state, err := src.eager.TryDequeue()
		switch state {
		case dqNotReady:
			return NotReady
		case dqExhausted:
			if err != nil {
				enqueueFailed(err)
				return Started
			}
			return Exhausted
		default:
			enqueueValue(v)
			return Started
		}

	case sourceKindBoostable:
		v, ready, err := src.boostable.tryDequeue()
		if !ready {
			// Nothing ready in our upstream stage; forward the boost deeper
			// into the chain instead of reporting NotReady ourselves.
			if metrics != nil {
				metrics.boostsForwarded.Inc()
			}
			return src.boostable.provideBoost()
		}
		if err != nil {
			enqueueFailed(err)
			return Started
		}
		enqueueValue(v)
		return Started

	default:
		panic("boost: invalid Source")
	}
}
