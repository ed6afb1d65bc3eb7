// Package logreporter provides a reporter callback that formats snapshots
// as logfmt-style lines.
package logreporter

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/appmetrics/appmetrics"
)

// Logger follows the standard log.Logger API.
type Logger interface {
	Println(v ...interface{})
}

// Reporter formats a snapshot map as a single logfmt-style line per call
// and writes it through Logger (or the standard logger if none is given).
type Reporter struct {
	logger Logger
}

// New creates a Reporter using logger. A nil logger falls back to the
// standard library's default logger.
func New(logger Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Callback returns a func(map[string]appmetrics.Snapshot) suitable for
// appmetrics.Reporter.Register.
func (r *Reporter) Callback() func(map[string]appmetrics.Snapshot) {
	return r.report
}

func (r *Reporter) report(data map[string]appmetrics.Snapshot) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, formatOne(name, data[name]))
	}
	r.log(strings.Join(parts, " "))
}

func formatOne(name string, snap appmetrics.Snapshot) string {
	switch s := snap.(type) {
	case appmetrics.CounterSnapshot:
		return fmt.Sprintf("sample#%s=%d", name, s.Value)
	case appmetrics.GaugeSnapshot:
		return fmt.Sprintf("sample#%s=%v", name, s.Value)
	case appmetrics.MeterSnapshot:
		return fmt.Sprintf("sample#%s.count=%d sample#%s.rate1m=%.4f", name, s.Count, name, s.One)
	case appmetrics.HistogramSnapshot:
		return fmt.Sprintf("sample#%s.mean=%.4f sample#%s.p95=%.4f", name, s.ArithmeticMean, name, percentile(s, 95))
	default:
		return fmt.Sprintf("sample#%s=?", name)
	}
}

func percentile(s appmetrics.HistogramSnapshot, level float64) float64 {
	for _, p := range s.Percentile {
		if p.Level == level {
			return p.Value
		}
	}
	return 0
}

func (r *Reporter) log(v ...interface{}) {
	if r.logger != nil {
		r.logger.Println(v...)
		return
	}
	log.Println(v...)
}
