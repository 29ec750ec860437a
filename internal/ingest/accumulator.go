// Package ingest drives the per-observation, per-batch read loop: a cheap
// metadata-only pass discovers the full time axis, which is then read in
// disjoint, time-ordered slices and merged into the caller's accumulated
// dataset, releasing each slice's scratch state before the next read.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/Sumatoshi-tech/uvingest/internal/fileset"
	"github.com/Sumatoshi-tech/uvingest/pkg/units"
	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// BatchPlan resolves the slice size for one read operation. Step takes
// precedence when positive (an explicit caller override); otherwise the
// planned batch count divides each observation's discovered time axis.
// The zero value reads everything in a single slice.
type BatchPlan struct {
	Step    int
	Batches int
}

// stepFor returns the number of timestamps per slice for a time axis of the
// given length.
func (p BatchPlan) stepFor(nTimes int) int {
	if p.Step > 0 {
		return p.Step
	}

	if p.Batches > 0 {
		return max(1, nTimes/p.Batches)
	}

	return nTimes
}

// Accumulator executes the streaming read loop against the raw-data reader
// collaborator. One accumulator drives exactly one dataset at a time;
// callers must serialize read operations against the same dataset.
type Accumulator struct {
	Raw     uvdata.RawReader
	Opts    uvdata.ReadOptions
	Plan    BatchPlan
	Logger  *slog.Logger
	Metrics *Metrics
}

// Accumulate merges one observation's data into acc, slice by slice. An
// observation whose discovery pass yields zero timestamps contributes
// nothing and is not an error. A slice failing mid-read leaves acc in the
// state of the last successful merge; the operation is not retried here.
func (a *Accumulator) Accumulate(ctx context.Context, acc *uvdata.Dataset, obs fileset.Observation) error {
	times, err := a.Raw.DiscoverTimestamps(ctx, obs.Metafits, obs.RawFiles)
	if err != nil {
		return fmt.Errorf("discover timestamps for %s: %w", obs.ObsID, err)
	}

	if len(times) == 0 {
		a.logDebug(ctx, "observation has no timestamps, skipping", "obsid", obs.ObsID)

		return nil
	}

	step := a.Plan.stepFor(len(times))

	for start := 0; start < len(times); start += step {
		end := min(start+step, len(times))

		if err := a.readSlice(ctx, acc, obs, times[start:end], start/step); err != nil {
			return err
		}
	}

	a.Metrics.RecordObservation(ctx)

	return nil
}

// readSlice reads one time slice and merges it. The fragment is scoped to
// this call so its scratch state is collectable before the next read.
func (a *Accumulator) readSlice(ctx context.Context, acc *uvdata.Dataset, obs fileset.Observation, slice []float64, index int) error {
	started := time.Now()

	frag, err := a.Raw.ReadSlice(ctx, obs.Metafits, obs.RawFiles, slice, a.Opts)
	if err != nil {
		return fmt.Errorf("read slice %d of %s: %w", index+1, obs.ObsID, err)
	}

	if err := acc.Merge(frag); err != nil {
		return fmt.Errorf("merge slice %d of %s: %w", index+1, obs.ObsID, err)
	}

	elapsed := time.Since(started)
	a.Metrics.RecordSlice(ctx, len(slice), elapsed)
	a.logSlice(ctx, obs.ObsID, index, len(slice), acc.NumTimes(), elapsed)

	return nil
}

// Read accumulates every observation of the file set. A set resolving to a
// single observation is filled directly, bypassing the per-observation
// iteration layer; both paths share the same discover-then-slice procedure.
func (a *Accumulator) Read(ctx context.Context, acc *uvdata.Dataset, fs *fileset.FileSet) error {
	observations := fs.Observations()

	if len(observations) == 1 {
		a.logDebug(ctx, "single observation, direct fill", "obsid", observations[0].ObsID)

		return a.Accumulate(ctx, acc, observations[0])
	}

	for _, obs := range observations {
		if err := a.Accumulate(ctx, acc, obs); err != nil {
			return err
		}
	}

	return nil
}

func (a *Accumulator) logSlice(ctx context.Context, obsid string, index, rows, totalRows int, elapsed time.Duration) {
	if a.Logger == nil {
		return
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	a.Logger.InfoContext(ctx, "ingest: slice merged",
		"obsid", obsid,
		"slice", index+1,
		"rows", rows,
		"total_rows", totalRows,
		"heap_inuse_mib", stats.HeapInuse/units.MiB,
		"elapsed", elapsed.Round(time.Millisecond),
	)
}

func (a *Accumulator) logDebug(ctx context.Context, msg string, args ...any) {
	if a.Logger == nil {
		return
	}

	a.Logger.DebugContext(ctx, msg, args...)
}
