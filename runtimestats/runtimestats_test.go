package runtimestats

import (
	"testing"

	"github.com/appmetrics/appmetrics"
)

func TestCollectorRegisterIsIdempotent(t *testing.T) {
	registry := appmetrics.NewRegistry()
	c := NewCollector(registry)

	if err := c.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.Register(); err != nil {
		t.Fatalf("second Register should be a no-op, got: %v", err)
	}

	names := registry.Names()
	if len(names) != 8 {
		t.Fatalf("expected 8 instruments, got %d: %v", len(names), names)
	}
}

func TestCollectorCollectPopulatesInstruments(t *testing.T) {
	registry := appmetrics.NewRegistry()
	c := NewCollector(registry)
	if err := c.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}

	c.Collect()

	snap, err := registry.Snapshot("runtime.goroutines")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	gs, ok := snap.(appmetrics.GaugeSnapshot)
	if !ok {
		t.Fatalf("expected GaugeSnapshot, got %T", snap)
	}
	if v, ok := gs.Value.(int64); !ok || v <= 0 {
		t.Fatalf("expected a positive goroutine count, got %v", gs.Value)
	}
}
