package appmetrics

import "sync"

// Gauge holds an arbitrary last-observed value.
type Gauge struct {
	mu    sync.Mutex
	value interface{}
}

// NewGauge creates a Gauge with a nil initial value.
func NewGauge() *Gauge {
	return &Gauge{}
}

// Observe replaces the gauge's value.
func (g *Gauge) Observe(v interface{}) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

// Snapshot returns the gauge's current value.
func (g *Gauge) Snapshot() GaugeSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GaugeSnapshot{Kind: "gauge", Value: g.value}
}
