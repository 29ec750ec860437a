package ingest

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSlicesTotal       = "uvingest.slices.total"
	metricRowsMerged        = "uvingest.rows.merged.total"
	metricSliceDuration     = "uvingest.slice.duration.seconds"
	metricObservationsTotal = "uvingest.observations.total"

	meterName = "github.com/Sumatoshi-tech/uvingest/internal/ingest"
)

// sliceDurationBoundaries covers sub-second cached reads through multi-minute
// cold reads of full coarse-channel slices.
var sliceDurationBoundaries = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// Metrics holds the OTel instruments for the ingest loop. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	slicesTotal       metric.Int64Counter
	rowsMerged        metric.Int64Counter
	sliceDuration     metric.Float64Histogram
	observationsTotal metric.Int64Counter
}

// NewMetrics creates the ingest instruments from the given meter. A nil
// meter falls back to the global provider (a no-op unless configured).
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	if mt == nil {
		mt = otel.Meter(meterName)
	}

	slices, err := mt.Int64Counter(metricSlicesTotal,
		metric.WithDescription("Total number of time slices read"),
		metric.WithUnit("{slice}"))
	if err != nil {
		return nil, err
	}

	rows, err := mt.Int64Counter(metricRowsMerged,
		metric.WithDescription("Total timestamp rows merged into the accumulator"),
		metric.WithUnit("{row}"))
	if err != nil {
		return nil, err
	}

	duration, err := mt.Float64Histogram(metricSliceDuration,
		metric.WithDescription("Wall time of one slice read and merge"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(sliceDurationBoundaries...))
	if err != nil {
		return nil, err
	}

	observations, err := mt.Int64Counter(metricObservationsTotal,
		metric.WithDescription("Total observations accumulated"),
		metric.WithUnit("{observation}"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		slicesTotal:       slices,
		rowsMerged:        rows,
		sliceDuration:     duration,
		observationsTotal: observations,
	}, nil
}

// RecordSlice records one completed slice read and merge.
func (m *Metrics) RecordSlice(ctx context.Context, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.slicesTotal.Add(ctx, 1)
	m.rowsMerged.Add(ctx, int64(rows))
	m.sliceDuration.Record(ctx, elapsed.Seconds())
}

// RecordObservation records one completed observation.
func (m *Metrics) RecordObservation(ctx context.Context) {
	if m == nil {
		return
	}

	m.observationsTotal.Add(ctx, 1)
}
