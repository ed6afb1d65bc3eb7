package appmetrics

import "time"

// DefaultRegistry is the process-wide registry used by the package-level
// convenience functions below.
var DefaultRegistry = NewRegistry()

// NewHistogramMetric creates a histogram in the default registry.
func NewHistogramMetric(name string, spec ReservoirSpec) (*Histogram, error) {
	return DefaultRegistry.NewHistogram(name, spec)
}

// NewMeterMetric creates a meter in the default registry.
func NewMeterMetric(name string, tickInterval time.Duration) (*Meter, error) {
	return DefaultRegistry.NewMeter(name, tickInterval)
}

// NewCounterMetric creates a counter in the default registry.
func NewCounterMetric(name string) (*Counter, error) {
	return DefaultRegistry.NewCounter(name)
}

// NewGaugeMetric creates a gauge in the default registry.
func NewGaugeMetric(name string) (*Gauge, error) {
	return DefaultRegistry.NewGauge(name)
}

// Metric returns the named instrument from the default registry.
func Metric(name string) (interface{}, error) {
	return DefaultRegistry.Metric(name)
}

// DeleteMetric removes the named instrument from the default registry.
func DeleteMetric(name string) {
	DefaultRegistry.DeleteMetric(name)
}

// Metrics returns the ascending-sorted list of instrument names in the
// default registry.
func Metrics() []string {
	return DefaultRegistry.Names()
}

// Observe records value against the named instrument in the default
// registry.
func Observe(name string, value float64) error {
	return DefaultRegistry.Observe(name, value)
}

// ResetDefaultRegistry replaces DefaultRegistry with a fresh, empty one
// and returns the previous registry so tests can restore it afterwards
// and run in isolation.
func ResetDefaultRegistry() *Registry {
	previous := DefaultRegistry
	DefaultRegistry = NewRegistry()
	return previous
}
