// Package batch sizes the read loop: given a file set's on-disk volume and a
// memory ceiling, it decides how many batches the accumulator should split
// each observation's time axis into so that peak memory stays under budget.
package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/uvingest/pkg/units"
)

// DefaultLeakageFactor estimates peak memory as a multiple of on-disk data
// volume during decode. Empirically calibrated against full-observation
// reads; a single global constant for all container formats.
const DefaultLeakageFactor = 7.0

// batchSafetyFactor doubles the computed batch count. Batch-count-to-memory
// reduction is sub-linear: per-batch fixed overhead does not shrink with
// smaller batches, so the naive quotient underestimates how many batches are
// needed to actually stay under the ceiling.
const batchSafetyFactor = 2

// Sentinel errors.
var (
	// ErrEmptyFileSet indicates a zero-size file set was passed to the
	// planner. A caller bug, not a runtime condition to recover from.
	ErrEmptyFileSet = errors.New("batch: file set size must be positive")

	// ErrNoMemoryCeiling indicates no ceiling was supplied and the host
	// memory probe returned nothing.
	ErrNoMemoryCeiling = errors.New("batch: could not determine a memory ceiling")
)

// Planner computes batch counts. The memory prober is an injected
// capability so tests can substitute a fixed figure for the real host.
type Planner struct {
	Prober MemoryProber
	Logger *slog.Logger
}

// NewPlanner returns a planner probing the real host, logging advisories to
// the given logger.
func NewPlanner(logger *slog.Logger) *Planner {
	return &Planner{Prober: HostProber{}, Logger: logger}
}

// Plan returns the number of batches to split each read into.
//
// Predicted peak memory is totalSizeGB times the leakage factor. When the
// prediction fits under the ceiling a single batch reads everything in one
// pass; otherwise the count is ceil(peak/ceiling) times the safety factor.
// A non-positive leakage factor selects the default; a non-positive ceiling
// asks the prober for the host's total memory. Probing total rather than
// currently available memory is a known imprecision: it overestimates the
// safe batch size when other processes hold memory.
func (p *Planner) Plan(totalSizeGB, leakageFactor, ceilingGB float64) (int, error) {
	if totalSizeGB <= 0 {
		return 0, ErrEmptyFileSet
	}

	if leakageFactor <= 0 {
		leakageFactor = DefaultLeakageFactor
	}

	probed := false

	if ceilingGB <= 0 {
		ceilingGB = p.probeCeilingGB()
		probed = true

		if ceilingGB <= 0 {
			return 0, ErrNoMemoryCeiling
		}
	}

	predictedGB := totalSizeGB * leakageFactor

	batches := 1
	if predictedGB >= ceilingGB {
		batches = int(math.Ceil(predictedGB/ceilingGB)) * batchSafetyFactor
	}

	p.advise(totalSizeGB, predictedGB, ceilingGB, batches, probed)

	return batches, nil
}

func (p *Planner) probeCeilingGB() float64 {
	prober := p.Prober
	if prober == nil {
		prober = HostProber{}
	}

	return units.BytesToGiB(int64(prober.TotalMemoryBytes()))
}

// advise emits the informational plan summary. Never an error.
func (p *Planner) advise(sizeGB, predictedGB, ceilingGB float64, batches int, probed bool) {
	if p.Logger == nil {
		return
	}

	source := "caller"
	if probed {
		source = "host total memory"
	}

	p.Logger.Info("batch plan",
		"batches", batches,
		"input_size", humanize.IBytes(uint64(units.GiBToBytes(sizeGB))),
		"predicted_peak", humanize.IBytes(uint64(units.GiBToBytes(predictedGB))),
		"memory_ceiling", humanize.IBytes(uint64(units.GiBToBytes(ceilingGB))),
		"ceiling_source", source,
	)
}

// Advisory renders the plan summary as a single line for CLI surfaces.
func Advisory(sizeGB, predictedGB, ceilingGB float64, batches int) string {
	return fmt.Sprintf("reading in %d batch(es): input %s, predicted peak %s, ceiling %s",
		batches,
		humanize.IBytes(uint64(units.GiBToBytes(sizeGB))),
		humanize.IBytes(uint64(units.GiBToBytes(predictedGB))),
		humanize.IBytes(uint64(units.GiBToBytes(ceilingGB))))
}
