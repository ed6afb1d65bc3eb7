// Package csvreporter dumps metric snapshots to per-instrument CSV files,
// one growing file per metric name and kind.
package csvreporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/appmetrics/appmetrics"
)

var histogramHeader = []string{
	"time", "n", "min", "max", "arithmetic_mean", "median", "harmonic_mean", "geometric_mean",
	"standard_deviation", "variance", "percentile_50", "percentile_75", "percentile_90",
	"percentile_95", "percentile_99", "percentile_99.9", "kurtosis", "skewness",
}

var meterHeader = []string{"time", "count", "mean", "one", "five", "fifteen", "day"}

// Reporter writes one CSV file per instrument, named
// "<directory>/<name>_<kind>.csv", writing the column header exactly once
// when the file is created.
type Reporter struct {
	// Directory is where CSV files are written. Must already exist.
	Directory string

	// Now returns the timestamp stamped into each row. Defaults to
	// time.Now; overridable for deterministic tests.
	Now func() time.Time
}

// New creates a Reporter writing CSV files into directory.
func New(directory string) *Reporter {
	return &Reporter{Directory: directory, Now: time.Now}
}

// Callback returns a func(map[string]appmetrics.Snapshot) suitable for
// appmetrics.Reporter.Register.
func (r *Reporter) Callback() func(map[string]appmetrics.Snapshot) {
	return r.report
}

func (r *Reporter) report(data map[string]appmetrics.Snapshot) {
	for name, snap := range data {
		switch s := snap.(type) {
		case appmetrics.HistogramSnapshot:
			_ = r.dumpHistogram(name, s)
		case appmetrics.MeterSnapshot:
			_ = r.dumpMeter(name, s)
		}
	}
}

func (r *Reporter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Reporter) fileName(name, kind string) (string, bool) {
	fileName := filepath.Join(r.Directory, fmt.Sprintf("%s_%s.csv", name, kind))
	_, err := os.Stat(fileName)
	return fileName, os.IsNotExist(err)
}

func percentileValue(s appmetrics.HistogramSnapshot, level float64) float64 {
	for _, p := range s.Percentile {
		if p.Level == level {
			return p.Value
		}
	}
	return 0
}

func (r *Reporter) dumpHistogram(name string, s appmetrics.HistogramSnapshot) error {
	fileName, isNew := r.fileName(name, s.Kind)

	row := []string{
		formatTime(r.now()),
		strconv.Itoa(s.N),
		formatFloat(s.Min),
		formatFloat(s.Max),
		formatFloat(s.ArithmeticMean),
		formatFloat(s.Median),
		formatFloat(s.HarmonicMean),
		formatFloat(s.GeometricMean),
		formatFloat(s.StandardDeviation),
		formatFloat(s.Variance),
		formatFloat(percentileValue(s, 50)),
		formatFloat(percentileValue(s, 75)),
		formatFloat(percentileValue(s, 90)),
		formatFloat(percentileValue(s, 95)),
		formatFloat(percentileValue(s, 99)),
		formatFloat(percentileValue(s, 99.9)),
		formatFloat(s.Kurtosis),
		formatFloat(s.Skewness),
	}

	return writeRow(fileName, isNew, histogramHeader, row)
}

func (r *Reporter) dumpMeter(name string, s appmetrics.MeterSnapshot) error {
	fileName, isNew := r.fileName(name, s.Kind)

	row := []string{
		formatTime(r.now()),
		strconv.FormatInt(s.Count, 10),
		formatFloat(s.Mean),
		formatFloat(s.One),
		formatFloat(s.Five),
		formatFloat(s.Fifteen),
		formatFloat(s.Day),
	}

	return writeRow(fileName, isNew, meterHeader, row)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
