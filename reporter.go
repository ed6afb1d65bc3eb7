package appmetrics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Schedule is a lazy sequence of absolute wall-clock ticks (in seconds
// since an arbitrary epoch). Next advances the schedule and reports
// whether a tick was produced; once exhausted it returns ok=false
// forever.
type Schedule interface {
	Next() (tick float64, ok bool)
}

// fixedIntervalSchedule yields start+n, start+2n, ... forever.
type fixedIntervalSchedule struct {
	interval float64
	next     float64
}

// FixedInterval returns a Schedule ticking every interval, starting from
// now.
func FixedInterval(interval time.Duration) Schedule {
	return &fixedIntervalSchedule{interval: interval.Seconds(), next: nowSeconds()}
}

func (f *fixedIntervalSchedule) Next() (float64, bool) {
	f.next += f.interval
	return f.next, true
}

// sliceSchedule yields a finite, pre-determined sequence of ticks. Used
// by tests (and callers with a known, bounded reporting plan).
type sliceSchedule struct {
	ticks []float64
	i     int
}

// NewSliceSchedule returns a Schedule that yields exactly the given
// ticks, in order, then is exhausted.
func NewSliceSchedule(ticks ...float64) Schedule {
	return &sliceSchedule{ticks: ticks}
}

func (s *sliceSchedule) Next() (float64, bool) {
	if s.i >= len(s.ticks) {
		return 0, false
	}
	t := s.ticks[s.i]
	s.i++
	return t, true
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

func realSleep(d float64, cancel <-chan struct{}) bool {
	if d <= 0 {
		d = 0
	}
	timer := time.NewTimer(time.Duration(d * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-cancel:
		return false
	}
}

// Reporter is the scheduled-reporting engine: it owns zero or more
// registrations, each a background worker that collects snapshots from a
// Registry on a Schedule and forwards them to a callback.
type Reporter struct {
	mu            sync.Mutex
	registrations map[string]context.CancelFunc

	// now and sleep are overridable for deterministic tests; production
	// code uses real wall-clock time.
	now   func() float64
	sleep func(d float64, cancel <-chan struct{}) bool
}

// NewReporter creates an empty Reporter engine.
func NewReporter() *Reporter {
	return &Reporter{
		registrations: make(map[string]context.CancelFunc),
		now:           nowSeconds,
		sleep:         realSleep,
	}
}

// Register starts a background worker which, at each tick of schedule,
// collects a snapshot of registry (filtered by tag when tag is non-nil,
// all instruments otherwise) and forwards it to callback, skipping
// ticks where the collected snapshot is empty. Returns an identifier
// that can be passed to Cancel.
func (rp *Reporter) Register(registry *Registry, schedule Schedule, tag *string, callback func(map[string]Snapshot)) string {
	ctx, cancel := context.WithCancel(context.Background())

	id := uuid.NewString()
	rp.mu.Lock()
	rp.registrations[id] = cancel
	rp.mu.Unlock()

	go rp.run(ctx, registry, schedule, tag, callback)

	return id
}

// Cancel stops the registration with the given id, unblocking its
// worker immediately. Canceling an unknown or already-cancelled id is a
// no-op.
func (rp *Reporter) Cancel(id string) {
	rp.mu.Lock()
	cancel, ok := rp.registrations[id]
	if ok {
		delete(rp.registrations, id)
	}
	rp.mu.Unlock()

	if ok {
		cancel()
	}
}

// Shutdown cancels every remaining registration, for use as a
// process-shutdown hook.
func (rp *Reporter) Shutdown() {
	rp.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(rp.registrations))
	for id, cancel := range rp.registrations {
		cancels = append(cancels, cancel)
		delete(rp.registrations, id)
	}
	rp.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (rp *Reporter) run(ctx context.Context, registry *Registry, schedule Schedule, tag *string, callback func(map[string]Snapshot)) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := rp.now()

		var next float64
		found := false
		for {
			tick, ok := schedule.Next()
			if !ok {
				break
			}
			if tick > now {
				next, found = tick, true
				break
			}
			// Tick already passed: skip it rather than back-fill.
		}
		if !found {
			return
		}

		if !rp.sleep(next-now, ctx.Done()) {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		var data map[string]Snapshot
		if tag != nil {
			data = registry.SnapshotByTag(*tag)
		} else {
			data = registry.SnapshotAll()
		}

		if len(data) == 0 {
			registry.logf("no metrics found for tag: %v", tag)
			continue
		}
		callback(data)
	}
}
