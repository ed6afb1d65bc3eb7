package appmetrics

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestMeanAndVariance(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	mean, err := Mean(data)
	if err != nil || mean != 3 {
		t.Fatalf("Mean: got %v, %v", mean, err)
	}

	sample, err := Variance(data, true)
	if err != nil || !almostEqual(sample, 2.5, 1e-9) {
		t.Fatalf("sample Variance: got %v, %v", sample, err)
	}

	pop, err := Variance(data, false)
	if err != nil || !almostEqual(pop, 2.0, 1e-9) {
		t.Fatalf("population Variance: got %v, %v", pop, err)
	}
}

func TestVarianceRequiresEnoughPoints(t *testing.T) {
	if _, err := Variance([]float64{1}, true); !errors.Is(err, ErrStatistics) {
		t.Fatalf("expected ErrStatistics for sample variance of 1 point, got %v", err)
	}
	if _, err := Variance(nil, false); !errors.Is(err, ErrStatistics) {
		t.Fatalf("expected ErrStatistics for population variance of 0 points, got %v", err)
	}
}

func TestGeometricMeanSentinelSubstitution(t *testing.T) {
	// zero substituted with e, negative with 1.0
	gm, err := GeometricMean([]float64{0, -4, 2})
	if err != nil {
		t.Fatalf("GeometricMean: %v", err)
	}
	want := math.Exp((math.Log(math.E) + math.Log(1.0) + math.Log(2)) / 3)
	if !almostEqual(gm, want, 1e-9) {
		t.Fatalf("GeometricMean: got %v, want %v", gm, want)
	}
}

func TestHarmonicMeanTreatsZeroReciprocalAsZero(t *testing.T) {
	hm, err := HarmonicMean([]float64{0, 0})
	if err != nil || hm != 0 {
		t.Fatalf("HarmonicMean of all-zero data: got %v, %v", hm, err)
	}

	hm, err = HarmonicMean([]float64{1, 2, 4})
	if err != nil {
		t.Fatalf("HarmonicMean: %v", err)
	}
	want := 3 / (1.0/1 + 1.0/2 + 1.0/4)
	if !almostEqual(hm, want, 1e-9) {
		t.Fatalf("HarmonicMean: got %v, want %v", hm, want)
	}
}

func TestSkewnessAndKurtosisZeroOnConstantData(t *testing.T) {
	data := []float64{5, 5, 5, 5}
	sk, err := Skewness(data)
	if err != nil || sk != 0.0 {
		t.Fatalf("Skewness on constant data: got %v, %v", sk, err)
	}
	ku, err := Kurtosis(data)
	if err != nil || ku != 0.0 {
		t.Fatalf("Kurtosis on constant data: got %v, %v", ku, err)
	}
}

func TestPercentileValueWorkedExample(t *testing.T) {
	// n=6, sorted data; p=50 -> idx = 0.5*6-0.5 = 2.5 -> floor=2 -> data[2]
	data := []float64{10, 20, 30, 40, 50, 60}
	v, err := PercentileValue(data, 50)
	if err != nil || v != 30 {
		t.Fatalf("PercentileValue(50): got %v, %v", v, err)
	}

	// p=99.9 on n=6: idx = 0.999*6-0.5 = 5.494 -> floor=5 -> data[5]
	v, err = PercentileValue(data, 99.9)
	if err != nil || v != 60 {
		t.Fatalf("PercentileValue(99.9): got %v, %v", v, err)
	}
}

func TestPercentileValueOutOfRange(t *testing.T) {
	data := []float64{1, 2, 3}
	// idx = (p/100)*3 - 0.5; p must stay within [~16.67, ~116.67] to keep
	// idx within [0, n]. A very small p drives idx negative.
	if _, err := PercentileValue(data, 0); !errors.Is(err, ErrStatistics) {
		t.Fatalf("expected ErrStatistics for p=0 on n=3, got %v", err)
	}
}

func TestPercentilesSwallowsErrors(t *testing.T) {
	ps := Percentiles([]float64{1, 2, 3})
	if len(ps) != len(PercentileLevels) {
		t.Fatalf("expected %d percentiles, got %d", len(PercentileLevels), len(ps))
	}
	// For n=3 every level is in range (idx runs from 1.0 at p=50 to 2.497
	// at p=99.9), so each resolves to data[floor(idx)].
	want := map[float64]float64{50: 2, 75: 2, 90: 3, 95: 3, 99: 3, 99.9: 3}
	for _, p := range ps {
		if p.Value != want[p.Level] {
			t.Fatalf("percentile %v: got %v, want %v", p.Level, p.Value, want[p.Level])
		}
	}
	// On empty data every level fails, and the failure resolves to 0.0
	// rather than propagating an error.
	for _, p := range Percentiles(nil) {
		if p.Value != 0.0 {
			t.Fatalf("percentile %v on empty data: got %v, want 0.0", p.Level, p.Value)
		}
	}
}

func TestAutoHistogramRequiresAtLeastTwoPoints(t *testing.T) {
	if _, err := AutoHistogram([]float64{1.5}); !errors.Is(err, ErrStatistics) {
		t.Fatalf("expected ErrStatistics for a single data point, got %v", err)
	}
}

func TestAutoHistogramConstantData(t *testing.T) {
	// sigma=0 -> width clamps to 1; min=max=1 -> bins = round(0/1)+1 = 1
	buckets, err := AutoHistogram([]float64{1, 1, 1})
	if err != nil {
		t.Fatalf("AutoHistogram: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d: %v", len(buckets), buckets)
	}
	if buckets[0].Edge != 2 || buckets[0].Count != 3 {
		t.Fatalf("expected bucket {2,3}, got %+v", buckets[0])
	}
}

func TestAutoHistogramCoversAllPoints(t *testing.T) {
	data := []float64{1, 2, 2, 3, 4, 8, 9}
	buckets, err := AutoHistogram(data)
	if err != nil {
		t.Fatalf("AutoHistogram: %v", err)
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	if total != len(data) {
		t.Fatalf("expected total count %d, got %d", len(data), total)
	}
	if buckets[len(buckets)-1].Edge < data[len(data)-1] {
		t.Fatalf("last bucket edge %v must cover max %v", buckets[len(buckets)-1].Edge, data[len(data)-1])
	}
}

func TestSumIsKahanCompensated(t *testing.T) {
	data := make([]float64, 0, 1000)
	for i := 0; i < 1000; i++ {
		data = append(data, 0.1)
	}
	got := Sum(data)
	if !almostEqual(got, 100, 1e-9) {
		t.Fatalf("Sum: got %v, want ~100", got)
	}
}
