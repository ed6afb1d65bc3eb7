/*
Package appmetrics is an in-process application-metrics library. It records
numeric observations into named, typed instruments, maintains statistical
summaries over those observations, and exposes the summaries both
programmatically and through the satellite wsgi and csvreporter packages.

	registry := appmetrics.NewRegistry()

	hist, _ := registry.NewHistogram("request.latency", appmetrics.UniformReservoir(0))
	hist.Observe(12.4)

	snap := hist.Snapshot()
	fmt.Println(snap.Median)

Four instrument kinds are available:

  - Histogram: a reservoir-backed sample with a rich statistical summary
    (mean, percentiles, auto-binned histogram, ...).
  - Meter: EWMA throughput over 1, 5, 15 and 1440-minute windows, in the
    style of the Unix load average.
  - Counter: a signed integer accumulator.
  - Gauge: a last-value holder.

Histograms are backed by one of four reservoirs (Uniform, SlidingCount,
SlidingTime, ExponentialDecay), each trading off differently between
recency and statistical representativeness. See Reservoir for details.

A Registry owns instruments by name, supports tagging instruments for
group snapshots, and a Reporter can be scheduled against the registry (or
a tag) to push snapshots to a callback at fixed intervals.
*/
package appmetrics
