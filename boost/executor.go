package boost

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tiffanycitra/boostedblob/internal/gopool"
	"github.com/tiffanycitra/boostedblob/internal/xlog"
)

// minTimeout and maxTimeout bound the scheduling loop's idle wait when
// boostables exist but none is currently ready: the loop polls at
// minTimeout, doubling up to maxTimeout each time it finds nothing has
// changed. These are defaults worth tuning, not a contract.
const (
	minTimeout = 10 * time.Millisecond
	maxTimeout = 100 * time.Millisecond
)

// registeredBoostable is what the scheduling loop needs from a boostable,
// independent of its T/R type parameters.
type registeredBoostable interface {
	provideBoost() BoostOutcome
	wait(ctx context.Context)
}

// Executor is the scoped owner of a capacity token and the set of active
// boostables registered against it. It runs a single scheduling loop
// goroutine that hands out boosts round-robin.
type Executor struct {
	id       uuid.UUID
	ctx      context.Context
	cancelFn context.CancelFunc
	token    *capacityToken
	metrics  executorMetrics
	loopDone chan struct{}

	mu         sync.Mutex
	boostables []registeredBoostable
	waiter     chan struct{}
	shutdown   bool
}

// NewExecutor creates an Executor bound to concurrency and immediately
// starts its scheduling loop. Callers are responsible for calling Close (on
// a clean exit) or Cancel (on an exceptional one); Run wraps this dance for
// the common case of a single scoped body.
func NewExecutor(ctx context.Context, concurrency int) (*Executor, error) {
	if concurrency < 1 {
		return nil, ErrBadConcurrency
	}
	loopCtx, cancel := context.WithCancel(ctx)
	e := &Executor{
		id:       uuid.New(),
		ctx:      loopCtx,
		cancelFn: cancel,
		token:    newCapacityToken(concurrency),
		loopDone: make(chan struct{}),
	}
	xlog.Debug("boost: executor started", "id", e.id, "concurrency", concurrency)
	gopool.Submit(func() {
		e.run()
		close(e.loopDone)
	})
	return e, nil
}

// ID uniquely identifies this executor instance, for correlating log lines
// across concurrently running executors.
func (e *Executor) ID() uuid.UUID { return e.id }

// Context returns the executor's own context, cancelled by Cancel.
func (e *Executor) Context() context.Context { return e.ctx }

// Metrics returns a point-in-time snapshot of the executor's counters.
func (e *Executor) Metrics() Metrics { return e.metrics.snapshot() }

// Close performs the normal scoped exit: mark shutdown, wake the loop, and
// block until it has drained every exhausted boostable and returned.
func (e *Executor) Close() error {
	e.mu.Lock()
	e.shutdown = true
	e.mu.Unlock()
	e.notifyRunner()
	<-e.loopDone
	return nil
}

// Cancel performs the exceptional scoped exit: stop the scheduling loop
// immediately via context cancellation, without awaiting outstanding tasks.
// Call this instead of Close when the executor's body is exiting due to an
// error or panic.
func (e *Executor) Cancel() {
	e.cancelFn()
}

// Run provides the scoped-acquisition shape described in the design notes:
// body runs with a fresh Executor, which is closed normally if body returns
// without error, or cancelled (not drained) if body returns an error or
// panics.
func Run(ctx context.Context, concurrency int, body func(ctx context.Context, e *Executor) error) error {
	e, err := NewExecutor(ctx, concurrency)
	if err != nil {
		return err
	}

	var bodyErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				e.Cancel()
				panic(r)
			}
		}()
		bodyErr = body(e.ctx, e)
	}()

	if bodyErr != nil {
		e.Cancel()
		return bodyErr
	}
	return e.Close()
}

// MapOrdered registers an ordered mapping stage against e and returns it.
func MapOrdered[T, R any](e *Executor, f MapFunc[T, R], src Source[T]) *OrderedBoostable[T, R] {
	b := newOrderedBoostable(e.ctx, f, src, e.token, &e.metrics)
	e.register(b)
	return b
}

// MapUnordered registers an unordered mapping stage against e and returns it.
func MapUnordered[T, R any](e *Executor, f MapFunc[T, R], src Source[T]) *UnorderedBoostable[T, R] {
	b := newUnorderedBoostable(e.ctx, f, src, e.token, &e.metrics)
	e.register(b)
	return b
}

func (e *Executor) register(b registeredBoostable) {
	e.mu.Lock()
	e.boostables = append([]registeredBoostable{b}, e.boostables...)
	e.mu.Unlock()
	e.notifyRunner()
}

func (e *Executor) notifyRunner() {
	e.mu.Lock()
	w := e.waiter
	e.mu.Unlock()
	if w == nil {
		return
	}
	select {
	case w <- struct{}{}:
	default:
	}
}

func (e *Executor) popFront() {
	e.mu.Lock()
	if len(e.boostables) > 0 {
		e.boostables = e.boostables[1:]
	}
	e.mu.Unlock()
}

func (e *Executor) rotate() {
	e.mu.Lock()
	if len(e.boostables) > 0 {
		front := e.boostables[0]
		e.boostables = append(e.boostables[1:], front)
	}
	e.mu.Unlock()
}

// run is the scheduling loop described in the component design: gate on
// capacity, round-robin boosts across the active deque, and idle-wait with
// a doubling timeout when boostables exist but none is ready.
func (e *Executor) run() {
	var notReady []registeredBoostable
	var exhausted []registeredBoostable
	timeout := minTimeout

	for {
		if err := e.token.acquire(e.ctx); err != nil {
			xlog.Debug("boost: scheduling loop cancelled waiting for capacity", "id", e.id)
			return
		}
		e.token.release()

		ranToEmpty := true
	inner:
		for {
			e.mu.Lock()
			if len(e.boostables) == 0 {
				e.mu.Unlock()
				break inner
			}
			front := e.boostables[0]
			e.mu.Unlock()

			switch front.provideBoost() {
			case NotReady:
				e.popFront()
				notReady = append(notReady, front)
			case Exhausted:
				e.popFront()
				exhausted = append(exhausted, front)
				e.metrics.boostsExhausted.Inc()
				xlog.Debug("boost: stage exhausted", "id", e.id)
			default: // Started
				e.metrics.boostsStarted.Inc()
				runtime.Gosched()
				e.rotate()
				if e.token.isEmpty() {
					ranToEmpty = false
					break inner
				}
			}
		}

		if !ranToEmpty {
			// Broke out of the inner loop for lack of capacity: go back to
			// the top and wait for a permit instead of absorbing not_ready.
			continue
		}

		e.mu.Lock()
		e.boostables = append(e.boostables, notReady...)
		e.mu.Unlock()
		notReady = nil

		e.mu.Lock()
		finished := e.shutdown && len(e.boostables) == 0
		e.mu.Unlock()
		if finished {
			break
		}

		if !e.idleWait(&timeout) {
			return
		}
	}

	for _, b := range exhausted {
		b.wait(context.Background())
	}
	// Yield once so consumer iterators that were about to resume get a
	// chance to do so before the scope exits.
	runtime.Gosched()
}

// idleWait installs a fresh wakeup signal and waits on it, a timeout (only
// when boostables are pending but not_ready), or context cancellation.
// Returns false iff the executor's context was cancelled.
func (e *Executor) idleWait(timeout *time.Duration) bool {
	w := make(chan struct{}, 1)
	e.mu.Lock()
	e.waiter = w
	hasPending := len(e.boostables) > 0
	e.mu.Unlock()

	var timerCh <-chan time.Time
	if hasPending {
		timer := time.NewTimer(*timeout)
		defer timer.Stop()
		timerCh = timer.C
	}

	select {
	case <-w:
		*timeout = minTimeout
	case <-timerCh:
		next := *timeout * 2
		if next > maxTimeout {
			next = maxTimeout
		}
		*timeout = next
	case <-e.ctx.Done():
		e.mu.Lock()
		e.waiter = nil
		e.mu.Unlock()
		return false
	}

	e.mu.Lock()
	e.waiter = nil
	e.mu.Unlock()
	return true
}
