package appmetrics

import (
	"math"
	"sync"
	"time"
)

// DefaultTickInterval is the default EWMA tick interval.
const DefaultTickInterval = 5 * time.Second

// ewma computes an exponentially-weighted moving average of values
// arriving at roughly a fixed rate.
type ewma struct {
	tickInterval time.Duration
	alpha        float64

	accumulator int64
	rate        float64
	initialized bool
}

func newEWMA(periodMinutes float64, tickInterval time.Duration) *ewma {
	return &ewma{
		tickInterval: tickInterval,
		alpha:        computeAlpha(periodMinutes, tickInterval),
	}
}

// computeAlpha returns the EWMA smoothing factor for a moving-average
// period (in minutes) ticked every tickInterval.
func computeAlpha(periodMinutes float64, tickInterval time.Duration) float64 {
	return 1 - math.Exp(-tickInterval.Seconds()/(60.0*periodMinutes))
}

// update folds v into the accumulator for the next tick.
func (e *ewma) update(v int64) {
	e.accumulator += v
}

// tick computes the instantaneous rate since the last tick and folds it
// into the moving average.
func (e *ewma) tick() {
	instant := float64(e.accumulator) / e.tickInterval.Seconds()
	if e.initialized {
		e.rate += e.alpha * (instant - e.rate)
	} else {
		e.initialized = true
		e.rate = instant
	}
	e.accumulator = 0
}

// Meter measures throughput: a running count plus 1, 5, 15-minute and
// 1-day exponentially-weighted moving averages, in the style of the Unix
// load average. Ticking happens lazily on every observation and
// snapshot, rather than via a background timer.
type Meter struct {
	tickInterval time.Duration
	clock        Clock

	m1, m5, m15, day *ewma

	startedOn  time.Time
	latestTick time.Time
	count      int64

	mu sync.Mutex
}

// NewMeter creates a Meter ticking at the given interval. A non-positive
// interval falls back to DefaultTickInterval.
func NewMeter(tickInterval time.Duration) *Meter {
	return NewMeterWithClock(tickInterval, RealClock{})
}

// NewMeterWithClock creates a Meter driven by a custom Clock (for
// deterministic tests).
func NewMeterWithClock(tickInterval time.Duration, clock Clock) *Meter {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	now := clock.Now()
	return &Meter{
		tickInterval: tickInterval,
		clock:        clock,
		m1:           newEWMA(1, tickInterval),
		m5:           newEWMA(5, tickInterval),
		m15:          newEWMA(15, tickInterval),
		day:          newEWMA(60*24, tickInterval),
		startedOn:    now,
		latestTick:   now,
	}
}

// tick emulates a real timer: it ticks each EWMA a number of times
// proportional to the elapsed wall-clock time since the last tick,
// rather than running a background goroutine. Caller must hold mu.
func (m *Meter) tick() {
	now := m.clock.Now()
	elapsed := now.Sub(m.latestTick)
	if elapsed <= m.tickInterval {
		return
	}
	ticks := int(elapsed / m.tickInterval)
	for i := 0; i < ticks; i++ {
		m.m1.tick()
		m.m5.tick()
		m.m15.tick()
		m.day.tick()
	}
	m.latestTick = now
}

// Observe records v events since the last call.
func (m *Meter) Observe(v int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick()
	m.m1.update(v)
	m.m5.update(v)
	m.m15.update(v)
	m.day.update(v)
	m.count += v
}

// Snapshot returns the meter's current throughput summary.
func (m *Meter) Snapshot() MeterSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick()

	mean := 0.0
	if elapsed := m.clock.Now().Sub(m.startedOn).Seconds(); elapsed > 0 {
		mean = float64(m.count) / elapsed
	}

	return MeterSnapshot{
		Kind:    "meter",
		Count:   m.count,
		Mean:    mean,
		One:     m.m1.rate,
		Five:    m.m5.rate,
		Fifteen: m.m15.rate,
		Day:     m.day.rate,
	}
}
