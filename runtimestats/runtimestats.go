// Package runtimestats registers gauges and counters for the Go runtime's
// own memory and scheduler statistics.
package runtimestats

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/appmetrics/appmetrics"
)

const (
	metricHeapAlloc  = "runtime.heap_alloc"
	metricAlloc      = "runtime.alloc"
	metricStackInuse = "runtime.stack_inuse"
	metricGoroutines = "runtime.goroutines"
	metricCgoCalls   = "runtime.cgo_calls"
	metricFrees      = "runtime.frees"
	metricMallocs    = "runtime.mallocs"
	metricNumGC      = "runtime.num_gc"
)

// Collector periodically reads runtime.MemStats and related counters and
// writes them into a Registry under a fixed set of metric names. Register
// must be called once to create the underlying instruments before Run or
// Collect is used.
type Collector struct {
	registry *appmetrics.Registry

	mu  sync.Mutex
	mem runtime.MemStats
}

// NewCollector creates a Collector writing into registry.
func NewCollector(registry *appmetrics.Registry) *Collector {
	return &Collector{registry: registry}
}

// Register creates the gauge and counter instruments this collector
// populates. It is idempotent: calling it more than once against the same
// registry reuses the existing instruments.
func (c *Collector) Register() error {
	for _, name := range []string{metricHeapAlloc, metricAlloc, metricStackInuse, metricGoroutines} {
		if _, err := c.registry.NewGauge(name); err != nil && !errors.Is(err, appmetrics.ErrDuplicateMetric) {
			return err
		}
	}
	for _, name := range []string{metricCgoCalls, metricFrees, metricMallocs, metricNumGC} {
		if _, err := c.registry.NewCounter(name); err != nil && !errors.Is(err, appmetrics.ErrDuplicateMetric) {
			return err
		}
	}
	return nil
}

// Collect takes one reading of the runtime's current statistics and writes
// it into the registry's gauges and counters.
func (c *Collector) Collect() {
	c.mu.Lock()
	runtime.ReadMemStats(&c.mem)
	mem := c.mem
	c.mu.Unlock()

	c.setGauge(metricHeapAlloc, mem.HeapAlloc)
	c.setGauge(metricAlloc, mem.Alloc)
	c.setGauge(metricStackInuse, mem.StackInuse)
	c.setGauge(metricGoroutines, uint64(runtime.NumGoroutine()))

	c.setCounter(metricCgoCalls, uint64(runtime.NumCgoCall()))
	c.setCounter(metricFrees, mem.Frees)
	c.setCounter(metricMallocs, mem.Mallocs)
	c.setCounter(metricNumGC, uint64(mem.NumGC))
}

func (c *Collector) setGauge(name string, v uint64) {
	if inst, err := c.registry.Metric(name); err == nil {
		if g, ok := inst.(*appmetrics.Gauge); ok {
			g.Observe(int64(v))
		}
	}
}

// setCounter records the absolute value v as the counter's running total,
// by resetting it to v each collection (these are cumulative runtime
// counters, not per-interval deltas).
func (c *Collector) setCounter(name string, v uint64) {
	if inst, err := c.registry.Metric(name); err == nil {
		if ctr, ok := inst.(*appmetrics.Counter); ok {
			ctr.Reset(int64(v))
		}
	}
}

// Run starts a blocking loop that calls Collect once immediately and then
// every interval, returning when stop is closed or receives a value.
func (c *Collector) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Collect()
	for {
		select {
		case <-ticker.C:
			c.Collect()
		case <-stop:
			return
		}
	}
}
