package appmetrics

// Snapshot is the canonical, point-in-time serializable form of any
// instrument's output. Histogram, Meter, Counter and Gauge snapshots
// all implement it.
type Snapshot interface {
	// SnapshotKind identifies the concrete snapshot shape: "histogram",
	// "meter", "counter" or "gauge".
	SnapshotKind() string
}

// MeterSnapshot is the canonical summary of a Meter.
type MeterSnapshot struct {
	Kind     string  `json:"kind"`
	Count    int64   `json:"count"`
	Mean     float64 `json:"mean"`
	One      float64 `json:"one"`
	Five     float64 `json:"five"`
	Fifteen  float64 `json:"fifteen"`
	Day      float64 `json:"day"`
}

// SnapshotKind implements Snapshot.
func (MeterSnapshot) SnapshotKind() string { return "meter" }

// CounterSnapshot is the canonical summary of a Counter.
type CounterSnapshot struct {
	Kind  string `json:"kind"`
	Value int64  `json:"value"`
}

// SnapshotKind implements Snapshot.
func (CounterSnapshot) SnapshotKind() string { return "counter" }

// GaugeSnapshot is the canonical summary of a Gauge.
type GaugeSnapshot struct {
	Kind  string      `json:"kind"`
	Value interface{} `json:"value"`
}

// SnapshotKind implements Snapshot.
func (GaugeSnapshot) SnapshotKind() string { return "gauge" }

var (
	_ Snapshot = HistogramSnapshot{}
	_ Snapshot = MeterSnapshot{}
	_ Snapshot = CounterSnapshot{}
	_ Snapshot = GaugeSnapshot{}
)
