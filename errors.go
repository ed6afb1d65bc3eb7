package appmetrics

import "errors"

// Sentinel errors identifying the error kinds named by the library. Callers
// should use errors.Is against these, since the concrete error returned is
// usually wrapped with additional context via fmt.Errorf("...: %w", ...).
var (
	// ErrDuplicateMetric is returned when a registry name is already bound,
	// whether to an instrument of a different kind or to one constructed
	// with different reservoir parameters.
	ErrDuplicateMetric = errors.New("appmetrics: metric already exists")

	// ErrInvalidMetric is returned on a registry lookup for an unknown
	// name, or a construction request naming an unknown reservoir or
	// metric kind.
	ErrInvalidMetric = errors.New("appmetrics: metric not found")

	// ErrStatistics is returned when a reduction cannot be computed over
	// the given data (empty input, too few points, ambiguous mode, ...).
	// Histogram.Snapshot recovers from this locally; everywhere else it
	// propagates to the caller.
	ErrStatistics = errors.New("appmetrics: statistics error")
)
