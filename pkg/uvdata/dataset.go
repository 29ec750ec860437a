package uvdata

import (
	"errors"
	"fmt"
)

// ErrAxisMismatch indicates a fragment's frequency axis disagrees with the
// dataset it is being merged into.
var ErrAxisMismatch = errors.New("uvdata: frequency axis mismatch")

// Dataset is the accumulated visibility data for one read operation. The
// caller owns it for the operation's duration; exactly one accumulator
// mutates it at a time. Rows are ordered by timestamp; Data and Flags hold
// one row of len(Freqs) values per timestamp.
type Dataset struct {
	Times []float64
	Freqs []float64
	Data  []complex64
	Flags []bool
}

// NewDataset returns an empty dataset ready to accumulate into.
func NewDataset() *Dataset {
	return &Dataset{}
}

// NumTimes returns the length of the time axis.
func (d *Dataset) NumTimes() int {
	return len(d.Times)
}

// rowWidth is the number of values per timestamp row.
func (d *Dataset) rowWidth() int {
	return len(d.Freqs)
}

// Merge appends the fragment's rows into the dataset, preserving timestamp
// ordering. An empty fragment is a no-op. The fragment is not retained; the
// caller may release it immediately after the merge returns.
func (d *Dataset) Merge(frag *Dataset) error {
	if frag == nil || len(frag.Times) == 0 {
		return nil
	}

	if len(d.Times) == 0 {
		d.Freqs = append(d.Freqs[:0], frag.Freqs...)
		d.Times = append(d.Times, frag.Times...)
		d.Data = append(d.Data, frag.Data...)
		d.Flags = append(d.Flags, frag.Flags...)

		return nil
	}

	if len(d.Freqs) != len(frag.Freqs) {
		return fmt.Errorf("%w: have %d channels, fragment has %d",
			ErrAxisMismatch, len(d.Freqs), len(frag.Freqs))
	}

	// Slices arrive in time order, so the common case is a straight append.
	if frag.Times[0] >= d.Times[len(d.Times)-1] {
		d.Times = append(d.Times, frag.Times...)
		d.Data = append(d.Data, frag.Data...)
		d.Flags = append(d.Flags, frag.Flags...)

		return nil
	}

	d.interleave(frag)

	return nil
}

// interleave performs a stable two-run merge by timestamp for fragments that
// arrive out of order relative to the accumulated rows.
func (d *Dataset) interleave(frag *Dataset) {
	width := d.rowWidth()

	mergedTimes := make([]float64, 0, len(d.Times)+len(frag.Times))
	mergedData := make([]complex64, 0, len(d.Data)+len(frag.Data))
	mergedFlags := make([]bool, 0, len(d.Flags)+len(frag.Flags))

	i, j := 0, 0
	for i < len(d.Times) || j < len(frag.Times) {
		takeOld := j >= len(frag.Times) || (i < len(d.Times) && d.Times[i] <= frag.Times[j])

		if takeOld {
			mergedTimes = append(mergedTimes, d.Times[i])
			mergedData = append(mergedData, d.Data[i*width:(i+1)*width]...)
			mergedFlags = append(mergedFlags, d.Flags[i*width:(i+1)*width]...)
			i++

			continue
		}

		mergedTimes = append(mergedTimes, frag.Times[j])
		mergedData = append(mergedData, frag.Data[j*width:(j+1)*width]...)
		mergedFlags = append(mergedFlags, frag.Flags[j*width:(j+1)*width]...)
		j++
	}

	d.Times = mergedTimes
	d.Data = mergedData
	d.Flags = mergedFlags
}
