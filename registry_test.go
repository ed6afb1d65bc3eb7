package appmetrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNewMetricDuplicateName(t *testing.T) {
	r := NewRegistry()
	_, err := r.NewCounter("requests")
	require.NoError(t, err)

	_, err = r.NewCounter("requests")
	assert.ErrorIs(t, err, ErrDuplicateMetric)
}

func TestRegistryNewMetricByKindTag(t *testing.T) {
	r := NewRegistry()
	for _, kind := range []string{"histogram", "meter", "counter", "gauge"} {
		_, err := r.NewMetric(kind, kind)
		require.NoError(t, err, "NewMetric(%q)", kind)
	}

	_, err := r.NewMetric("bogus", "not-a-kind")
	assert.ErrorIs(t, err, ErrInvalidMetric)
}

func TestRegistryMetricNotFound(t *testing.T) {
	r := NewRegistry()

	_, err := r.Metric("missing")
	assert.ErrorIs(t, err, ErrInvalidMetric)

	_, err = r.Snapshot("missing")
	assert.ErrorIs(t, err, ErrInvalidMetric)

	err = r.Observe("missing", 1)
	assert.ErrorIs(t, err, ErrInvalidMetric)
}

func TestRegistryDeleteMetricPurgesTags(t *testing.T) {
	r := NewRegistry()
	_, err := r.NewCounter("requests")
	require.NoError(t, err)
	require.NoError(t, r.Tag("requests", "http"))

	r.DeleteMetric("requests")

	assert.Empty(t, r.Tags("http"))
	assert.Empty(t, r.TagNames())
}

func TestRegistryTaggingAndSnapshotByTag(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		_, err := r.NewCounter(name)
		require.NoError(t, err)
	}

	require.NoError(t, r.Tag("a", "group1"))
	require.NoError(t, r.Tag("b", "group1"))
	require.NoError(t, r.Observe("a", 1))
	require.NoError(t, r.Observe("b", 2))
	require.NoError(t, r.Observe("c", 3))

	data := r.SnapshotByTag("group1")
	assert.Len(t, data, 2)
	assert.NotContains(t, data, "c")
}

func TestRegistryUntagReturnsWhetherRemoved(t *testing.T) {
	r := NewRegistry()
	_, err := r.NewCounter("a")
	require.NoError(t, err)
	require.NoError(t, r.Tag("a", "group1"))

	assert.True(t, r.Untag("a", "group1"))
	assert.False(t, r.Untag("a", "group1"))
}

func TestRegistryGetOrCreateHistogramIdempotent(t *testing.T) {
	r := NewRegistry()
	spec := UniformReservoir(50)

	h1, err := r.GetOrCreateHistogram("latency", spec)
	require.NoError(t, err)
	h2, err := r.GetOrCreateHistogram("latency", spec)
	require.NoError(t, err)
	assert.Same(t, h1, h2)

	_, err = r.GetOrCreateHistogram("latency", SlidingCountReservoirSpec(50))
	assert.ErrorIs(t, err, ErrDuplicateMetric)
}

func TestRegistryScopedTimerRecordsElapsed(t *testing.T) {
	r := NewRegistry()
	stop, err := r.ScopedTimer("work", UniformReservoir(10))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	stop()

	snap, err := r.Snapshot("work")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.(HistogramSnapshot).N)
}

func TestRegistryMeasuredWrapsFunction(t *testing.T) {
	r := NewRegistry()
	calls := 0
	wrapped, err := r.Measured("work", UniformReservoir(10), func() { calls++ })
	require.NoError(t, err)

	wrapped()
	wrapped()
	assert.Equal(t, 2, calls)

	snap, err := r.Snapshot("work")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.(HistogramSnapshot).N)
}

func TestRegistryCountedWrapsFunction(t *testing.T) {
	r := NewRegistry()
	wrapped, err := r.Counted("calls", 5*time.Second, func() {})
	require.NoError(t, err)

	wrapped()
	wrapped()
	wrapped()

	snap, err := r.Snapshot("calls")
	require.NoError(t, err)
	assert.EqualValues(t, 3, snap.(MeterSnapshot).Count)
}

func TestDefaultRegistryResetIsolatesTests(t *testing.T) {
	previous := ResetDefaultRegistry()
	defer func() { DefaultRegistry = previous }()

	assert.Empty(t, Metrics())

	_, err := NewCounterMetric("x")
	require.NoError(t, err)
	assert.Len(t, Metrics(), 1)
}
