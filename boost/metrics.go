package boost

import "sync/atomic"

// Gauge is a hand-rolled atomic up/down counter, in the spirit of
// go-ethereum's own metrics package: that package pulls in no external
// metrics-client dependency either, since every repo in this codebase's
// lineage rolls its own counters and gauges rather than wiring a reporting
// client into a library.
type Gauge struct {
	v int64
}

func (g *Gauge) Inc()            { atomic.AddInt64(&g.v, 1) }
func (g *Gauge) Dec()            { atomic.AddInt64(&g.v, -1) }
func (g *Gauge) Snapshot() int64 { return atomic.LoadInt64(&g.v) }

// Counter only ever increases.
type Counter struct {
	v int64
}

func (c *Counter) Inc()            { atomic.AddInt64(&c.v, 1) }
func (c *Counter) Snapshot() int64 { return atomic.LoadInt64(&c.v) }

// Metrics is a snapshot of an Executor's internal counters, exposed so a
// host application can observe scheduling behaviour without depending on the
// executor's internal types.
type Metrics struct {
	InFlight        int64
	BoostsStarted   int64
	BoostsForwarded int64
	BoostsExhausted int64
}

// executorMetrics holds the live atomic counters an Executor updates as its
// scheduling loop runs.
type executorMetrics struct {
	inFlight        Gauge
	boostsStarted   Counter
	boostsForwarded Counter
	boostsExhausted Counter
}

func (m *executorMetrics) snapshot() Metrics {
	return Metrics{
		InFlight:        m.inFlight.Snapshot(),
		BoostsStarted:   m.boostsStarted.Snapshot(),
		BoostsForwarded: m.boostsForwarded.Snapshot(),
		BoostsExhausted: m.boostsExhausted.Snapshot(),
	}
}
