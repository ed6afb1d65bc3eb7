package appmetrics

// Histogram couples a Reservoir to the statistics kernel to produce a
// rich summary of the distribution of observed values.
type Histogram struct {
	reservoir Reservoir
}

// NewHistogram creates a Histogram backed by the given reservoir.
func NewHistogram(reservoir Reservoir) *Histogram {
	return &Histogram{reservoir: reservoir}
}

// Observe adds a value to the histogram's reservoir. Returns whether the
// reservoir's state changed.
func (h *Histogram) Observe(x float64) bool {
	return h.reservoir.Add(x)
}

// RawData returns the reservoir's current raw contents, order
// unspecified.
func (h *Histogram) RawData() []float64 {
	return h.reservoir.Values()
}

// Reservoir returns the instrument's backing reservoir.
func (h *Histogram) Reservoir() Reservoir {
	return h.reservoir
}

// HistogramSnapshot is the canonical, JSON-serializable summary of a
// Histogram.
type HistogramSnapshot struct {
	Kind               string            `json:"kind"`
	Min                float64           `json:"min"`
	Max                float64           `json:"max"`
	ArithmeticMean     float64           `json:"arithmetic_mean"`
	GeometricMean      float64           `json:"geometric_mean"`
	HarmonicMean       float64           `json:"harmonic_mean"`
	Median             float64           `json:"median"`
	Variance           float64           `json:"variance"`
	StandardDeviation  float64           `json:"standard_deviation"`
	Skewness           float64           `json:"skewness"`
	Kurtosis           float64           `json:"kurtosis"`
	Percentile         []Percentile      `json:"percentile"`
	Histogram          []HistogramBucket `json:"histogram"`
	N                  int               `json:"n"`
}

// SnapshotKind implements Snapshot.
func (HistogramSnapshot) SnapshotKind() string { return "histogram" }

// Snapshot computes the statistical summary over the reservoir's current
// contents. Individual statistic failures (e.g. variance on a single
// sample) are swallowed and reported as 0.0; the auto-binned histogram
// defaults to a single (0, 0) bucket when there are too few points.
func (h *Histogram) Snapshot() HistogramSnapshot {
	values := h.reservoir.SortedValues()

	safe := func(f func([]float64) (float64, error)) float64 {
		v, err := f(values)
		if err != nil {
			return 0.0
		}
		return v
	}

	buckets, err := AutoHistogram(values)
	if err != nil {
		buckets = []HistogramBucket{{Edge: 0, Count: 0}}
	}

	var min, max float64
	if len(values) > 0 {
		min, max = values[0], values[len(values)-1]
	}

	return HistogramSnapshot{
		Kind:              "histogram",
		Min:               min,
		Max:               max,
		ArithmeticMean:    safe(Mean),
		GeometricMean:     safe(GeometricMean),
		HarmonicMean:      safe(HarmonicMean),
		Median:            safe(Median),
		Variance:          safe(func(d []float64) (float64, error) { return Variance(d, true) }),
		StandardDeviation: safe(Stdev),
		Skewness:          safe(Skewness),
		Kurtosis:          safe(Kurtosis),
		Percentile:        Percentiles(values),
		Histogram:         buckets,
		N:                 len(values),
	}
}
