package appmetrics

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"
)

// Logger is the minimal logging seam the registry and reporter engine
// write through: a Printf-style interface so any *log.Logger (or a
// custom adapter) satisfies it without a wrapper.
type Logger interface {
	Printf(string, ...interface{})
}

// instrumentKind identifies the concrete type of an entry stored in a
// Registry.
type instrumentKind string

const (
	kindHistogram instrumentKind = "histogram"
	kindMeter     instrumentKind = "meter"
	kindCounter   instrumentKind = "counter"
	kindGauge     instrumentKind = "gauge"
)

// entry is the registry's internal, type-erased handle on one named
// instrument plus whatever construction parameters matter for
// idempotent re-creation (get_or_create_histogram, Measured, Counted).
type entry struct {
	kind         instrumentKind
	histogram    *Histogram
	meter        *Meter
	counter      *Counter
	gauge        *Gauge
	reservoirSpec ReservoirSpec
	tickInterval time.Duration
}

func (e *entry) observe(value float64) error {
	switch e.kind {
	case kindHistogram:
		e.histogram.Observe(value)
	case kindMeter:
		e.meter.Observe(int64(value))
	case kindCounter:
		e.counter.Observe(value)
	case kindGauge:
		e.gauge.Observe(value)
	default:
		return fmt.Errorf("unknown instrument kind %q: %w", e.kind, ErrInvalidMetric)
	}
	return nil
}

func (e *entry) snapshot() Snapshot {
	switch e.kind {
	case kindHistogram:
		return e.histogram.Snapshot()
	case kindMeter:
		return e.meter.Snapshot()
	case kindCounter:
		return e.counter.Snapshot()
	case kindGauge:
		return e.gauge.Snapshot()
	default:
		return nil
	}
}

// instrument returns the concrete, typed instrument handle (*Histogram,
// *Meter, *Counter or *Gauge) stored in this entry.
func (e *entry) instrument() interface{} {
	switch e.kind {
	case kindHistogram:
		return e.histogram
	case kindMeter:
		return e.meter
	case kindCounter:
		return e.counter
	case kindGauge:
		return e.gauge
	default:
		return nil
	}
}

// Registry is a process-wide mapping of named, typed instruments plus a
// many-to-many tag index over them. All structural operations (creating,
// deleting, tagging instruments) are serialized by a single mutex;
// instrument-local mutation is serialized by each instrument's own lock.
type Registry struct {
	// Logger receives diagnostic output from the reporter engine, e.g.
	// when a scheduled collection finds no tagged instruments. Defaults
	// to a logger writing to stderr.
	Logger Logger

	mu          sync.Mutex
	instruments map[string]*entry
	tags        map[string]map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		Logger:      log.New(os.Stderr, "appmetrics: ", log.LstdFlags),
		instruments: make(map[string]*entry),
		tags:        make(map[string]map[string]struct{}),
	}
}

func (r *Registry) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// newEntry inserts e under name, failing with ErrDuplicateMetric if the
// name is already bound.
func (r *Registry) newEntry(name string, e *entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instruments[name]; exists {
		return fmt.Errorf("metric %q already exists: %w", name, ErrDuplicateMetric)
	}
	r.instruments[name] = e
	return nil
}

// NewHistogram creates a new histogram metric backed by the reservoir
// described by spec. Fails with ErrDuplicateMetric if name is taken.
func (r *Registry) NewHistogram(name string, spec ReservoirSpec) (*Histogram, error) {
	reservoir, err := spec.Build()
	if err != nil {
		return nil, err
	}
	h := NewHistogram(reservoir)
	if err := r.newEntry(name, &entry{kind: kindHistogram, histogram: h, reservoirSpec: spec}); err != nil {
		return nil, err
	}
	return h, nil
}

// NewMeter creates a new meter metric ticking at the given interval.
// Fails with ErrDuplicateMetric if name is taken.
func (r *Registry) NewMeter(name string, tickInterval time.Duration) (*Meter, error) {
	m := NewMeter(tickInterval)
	if err := r.newEntry(name, &entry{kind: kindMeter, meter: m, tickInterval: tickInterval}); err != nil {
		return nil, err
	}
	return m, nil
}

// NewCounter creates a new counter metric. Fails with ErrDuplicateMetric
// if name is taken.
func (r *Registry) NewCounter(name string) (*Counter, error) {
	c := NewCounter()
	if err := r.newEntry(name, &entry{kind: kindCounter, counter: c}); err != nil {
		return nil, err
	}
	return c, nil
}

// NewGauge creates a new gauge metric. Fails with ErrDuplicateMetric if
// name is taken.
func (r *Registry) NewGauge(name string) (*Gauge, error) {
	g := NewGauge()
	if err := r.newEntry(name, &entry{kind: kindGauge, gauge: g}); err != nil {
		return nil, err
	}
	return g, nil
}

// NewMetric creates a metric of the given kind tag ("histogram", "meter",
// "counter" or "gauge"). Reservoir-specific parameters (for histograms)
// and the tick interval (for meters) are taken from opts if supplied;
// zero values fall back to defaults.
func (r *Registry) NewMetric(name, kind string, opts ...MetricOption) (interface{}, error) {
	cfg := metricConfig{reservoirSpec: UniformReservoir(0), tickInterval: DefaultTickInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch kind {
	case "histogram":
		return r.NewHistogram(name, cfg.reservoirSpec)
	case "gauge":
		return r.NewGauge(name)
	case "counter":
		return r.NewCounter(name)
	case "meter":
		return r.NewMeter(name, cfg.tickInterval)
	default:
		return nil, fmt.Errorf("unknown metric kind %q: %w", kind, ErrInvalidMetric)
	}
}

// MetricOption configures NewMetric.
type MetricOption func(*metricConfig)

type metricConfig struct {
	reservoirSpec ReservoirSpec
	tickInterval  time.Duration
}

// WithReservoir sets the reservoir spec for a "histogram" NewMetric call.
func WithReservoir(spec ReservoirSpec) MetricOption {
	return func(c *metricConfig) { c.reservoirSpec = spec }
}

// WithTickInterval sets the tick interval for a "meter" NewMetric call.
func WithTickInterval(d time.Duration) MetricOption {
	return func(c *metricConfig) { c.tickInterval = d }
}

// Metric returns the instrument registered under name: a *Histogram,
// *Meter, *Counter or *Gauge. Fails with ErrInvalidMetric if name is
// unknown.
func (r *Registry) Metric(name string) (interface{}, error) {
	r.mu.Lock()
	e, ok := r.instruments[name]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("metric %q not found: %w", name, ErrInvalidMetric)
	}
	return e.instrument(), nil
}

// DeleteMetric removes the named instrument, if any, and purges it from
// every tag set; tag sets that become empty are dropped. It is not an
// error to delete a name that does not exist.
func (r *Registry) DeleteMetric(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.instruments, name)
	for tag, names := range r.tags {
		if _, ok := names[name]; ok {
			delete(names, name)
			if len(names) == 0 {
				delete(r.tags, tag)
			}
		}
	}
}

// Names returns the ascending-sorted list of registered instrument
// names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.instruments))
	for name := range r.instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the snapshot of the named instrument. Fails with
// ErrInvalidMetric if name is unknown.
func (r *Registry) Snapshot(name string) (Snapshot, error) {
	r.mu.Lock()
	e, ok := r.instruments[name]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("metric %q not found: %w", name, ErrInvalidMetric)
	}
	return e.snapshot(), nil
}

// Observe records value against the named instrument. Fails with
// ErrInvalidMetric if name is unknown.
func (r *Registry) Observe(name string, value float64) error {
	r.mu.Lock()
	e, ok := r.instruments[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("metric %q not found: %w", name, ErrInvalidMetric)
	}
	return e.observe(value)
}

// Tag adds tagName to the named instrument's tag set. Fails with
// ErrInvalidMetric if name is unknown.
func (r *Registry) Tag(name, tagName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instruments[name]; !ok {
		return fmt.Errorf("metric %q not found: %w", name, ErrInvalidMetric)
	}
	names, ok := r.tags[tagName]
	if !ok {
		names = make(map[string]struct{})
		r.tags[tagName] = names
	}
	names[name] = struct{}{}
	return nil
}

// Untag removes tagName from the named instrument's tag set, reporting
// whether a removal happened. An empty tag set is dropped.
func (r *Registry) Untag(name, tagName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	names, ok := r.tags[tagName]
	if !ok {
		return false
	}
	if _, ok := names[name]; !ok {
		return false
	}
	delete(names, name)
	if len(names) == 0 {
		delete(r.tags, tagName)
	}
	return true
}

// TagNames returns the ascending-sorted list of known tag names.
func (r *Registry) TagNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.tags))
	for tag := range r.tags {
		names = append(names, tag)
	}
	sort.Strings(names)
	return names
}

// Tags returns the ascending-sorted list of instrument names carrying
// tagName, or nil if the tag is unknown.
func (r *Registry) Tags(tagName string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names, ok := r.tags[tagName]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SnapshotByTag returns the snapshot of every instrument carrying
// tagName. Instruments that were deleted between the tag lookup and the
// snapshot are silently skipped.
func (r *Registry) SnapshotByTag(tagName string) map[string]Snapshot {
	r.mu.Lock()
	names, ok := r.tags[tagName]
	var entries map[string]*entry
	if ok {
		entries = make(map[string]*entry, len(names))
		for name := range names {
			if e, found := r.instruments[name]; found {
				entries[name] = e
			}
		}
	}
	r.mu.Unlock()

	out := make(map[string]Snapshot, len(entries))
	for name, e := range entries {
		out[name] = e.snapshot()
	}
	return out
}

// SnapshotAll returns the snapshot of every registered instrument,
// backing the reporter engine's null tag filter.
func (r *Registry) SnapshotAll() map[string]Snapshot {
	r.mu.Lock()
	entries := make(map[string]*entry, len(r.instruments))
	for name, e := range r.instruments {
		entries[name] = e
	}
	r.mu.Unlock()

	out := make(map[string]Snapshot, len(entries))
	for name, e := range entries {
		out[name] = e.snapshot()
	}
	return out
}

// GetOrCreateHistogram returns the existing histogram named name if its
// reservoir matches spec, or creates one. Fails with ErrDuplicateMetric
// if name is bound to a different kind, or to a histogram with a
// different reservoir.
func (r *Registry) GetOrCreateHistogram(name string, spec ReservoirSpec) (*Histogram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.instruments[name]; ok {
		if e.kind != kindHistogram {
			return nil, fmt.Errorf("metric %q is a %s, not a histogram: %w", name, e.kind, ErrDuplicateMetric)
		}
		built, err := spec.Build()
		if err != nil {
			return nil, err
		}
		if !e.histogram.reservoir.SameKind(built) {
			return nil, fmt.Errorf("metric %q already exists with a different reservoir: %w", name, ErrDuplicateMetric)
		}
		return e.histogram, nil
	}

	reservoir, err := spec.Build()
	if err != nil {
		return nil, err
	}
	h := NewHistogram(reservoir)
	r.instruments[name] = &entry{kind: kindHistogram, histogram: h, reservoirSpec: spec}
	return h, nil
}

// getOrCreateMeter returns the existing meter named name if its tick
// interval matches, or creates one. Fails with ErrDuplicateMetric if
// name is bound to a different kind or tick interval.
func (r *Registry) getOrCreateMeter(name string, tickInterval time.Duration) (*Meter, error) {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.instruments[name]; ok {
		if e.kind != kindMeter {
			return nil, fmt.Errorf("metric %q is a %s, not a meter: %w", name, e.kind, ErrDuplicateMetric)
		}
		if e.tickInterval != tickInterval {
			return nil, fmt.Errorf("metric %q already exists with a different tick interval: %w", name, ErrDuplicateMetric)
		}
		return e.meter, nil
	}

	m := NewMeter(tickInterval)
	r.instruments[name] = &entry{kind: kindMeter, meter: m, tickInterval: tickInterval}
	return m, nil
}

// ScopedTimer records, on the caller's return from the enclosing scope,
// the elapsed wall time since ScopedTimer was called into the named
// histogram (created lazily via GetOrCreateHistogram). Use as:
//
//	stop, err := registry.ScopedTimer("request.latency", appmetrics.UniformReservoir(0))
//	if err != nil {
//		return err
//	}
//	defer stop()
func (r *Registry) ScopedTimer(name string, spec ReservoirSpec) (func(), error) {
	h, err := r.GetOrCreateHistogram(name, spec)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	return func() {
		h.Observe(time.Since(start).Seconds())
	}, nil
}

// Measured wraps f so that every call records its execution time into
// the named histogram. Repeated wrapping against the same name with an
// equivalent reservoir is idempotent; a mismatched reservoir or a
// different existing kind fails with ErrDuplicateMetric.
func (r *Registry) Measured(name string, spec ReservoirSpec, f func()) (func(), error) {
	h, err := r.GetOrCreateHistogram(name, spec)
	if err != nil {
		return nil, err
	}
	return func() {
		start := time.Now()
		f()
		h.Observe(time.Since(start).Seconds())
	}, nil
}

// Counted wraps f so that every call increments the named meter by one.
// Repeated wrapping against the same name with the same tick interval is
// idempotent; a mismatched tick interval or a different existing kind
// fails with ErrDuplicateMetric.
func (r *Registry) Counted(name string, tickInterval time.Duration, f func()) (func(), error) {
	m, err := r.getOrCreateMeter(name, tickInterval)
	if err != nil {
		return nil, err
	}
	return func() {
		f()
		m.Observe(1)
	}, nil
}
