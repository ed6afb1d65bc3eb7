package logreporter

import (
	"strings"
	"testing"

	"github.com/appmetrics/appmetrics"
)

type capture struct {
	lines []string
}

func (c *capture) Println(v ...interface{}) {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = x.(string)
	}
	c.lines = append(c.lines, strings.Join(parts, " "))
}

func TestReporterCallbackFormatsSnapshots(t *testing.T) {
	c := &capture{}
	r := New(c)

	data := map[string]appmetrics.Snapshot{
		"requests": appmetrics.CounterSnapshot{Kind: "counter", Value: 3},
	}
	r.Callback()(data)

	if len(c.lines) != 1 {
		t.Fatalf("expected 1 logged line, got %d", len(c.lines))
	}
	if !strings.Contains(c.lines[0], "sample#requests=3") {
		t.Fatalf("unexpected log line: %q", c.lines[0])
	}
}

func TestReporterCallbackDefaultLogger(t *testing.T) {
	r := New(nil)
	data := map[string]appmetrics.Snapshot{
		"load": appmetrics.GaugeSnapshot{Kind: "gauge", Value: 1.5},
	}
	// Exercises the default-logger path; nothing to assert beyond no panic.
	r.Callback()(data)
}
