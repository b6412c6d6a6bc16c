// Package gopool mirrors go-ethereum's common/gopool convention of routing
// background work through a shared ants pool instead of bare `go` statements,
// so that goroutine reuse and panics are handled in one place.
package gopool

import (
	"runtime"

	"github.com/panjf2000/ants/v2"
)

var defaultPool, _ = ants.NewPool(256*runtime.NumCPU(), ants.WithNonblocking(true))

// Submit schedules fn to run on the pool. If the pool is saturated (or has
// been released), ants rejects the task and fn runs on a plain goroutine
// instead, so Submit never blocks the caller.
func Submit(fn func()) {
	if err := defaultPool.Submit(fn); err != nil {
		go fn()
	}
}

// Release frees the pool's resources. Tests that create many executors in
// quick succession are not expected to call this; it exists for long-running
// hosts that want a clean shutdown path.
func Release() {
	defaultPool.Release()
}
