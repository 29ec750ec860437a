// Package uvdata defines the boundary to the external visibility decoders:
// the in-memory dataset the ingest loop accumulates into, the narrow reader
// interfaces the decoders implement, and the option bundles passed through
// to them. The binary decode of the scientific formats lives outside this
// module; implementations register themselves here the way database drivers
// register with database/sql.
package uvdata

import (
	"context"
	"errors"
)

// Sentinel errors reported by reader implementations.
var (
	// ErrNotFound indicates the requested file does not exist.
	ErrNotFound = errors.New("uvdata: file not found")

	// ErrCorrupt indicates the file exists but could not be decoded.
	ErrCorrupt = errors.New("uvdata: corrupt file")
)

// ChannelRow maps one hardware-assigned coarse channel to its logical,
// frequency-ordered index.
type ChannelRow struct {
	// Hardware is the receiver-assigned coarse channel index (gpubox number).
	Hardware int

	// Logical is the frequency-ordered channel index.
	Logical int

	// CentreHz is the channel centre frequency.
	CentreHz float64
}

// ChannelTable is an observation's full hardware-to-logical channel mapping.
type ChannelTable []ChannelRow

// Equal reports whether two tables agree exactly, row for row.
func (t ChannelTable) Equal(other ChannelTable) bool {
	if len(t) != len(other) {
		return false
	}

	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}

	return true
}

// LogicalFor returns the logical channel for a hardware index.
func (t ChannelTable) LogicalFor(hardware int) (int, bool) {
	for _, row := range t {
		if row.Hardware == hardware {
			return row.Logical, true
		}
	}

	return 0, false
}

// Antenna describes one entry of the metadata antenna/receiver table.
type Antenna struct {
	Name    string
	Index   int
	Flagged bool
}

// MetafitsHandle is an open metadata file. Consumed read-only.
type MetafitsHandle interface {
	// ChannelTable returns the hardware-to-logical channel mapping.
	ChannelTable() ChannelTable

	// Antennas returns the antenna/receiver table.
	Antennas() []Antenna

	Close() error
}

// MetafitsReader opens metadata companion files.
type MetafitsReader interface {
	// Open fails with ErrNotFound or ErrCorrupt on bad input.
	Open(path string) (MetafitsHandle, error)
}

// RawReader reads raw visibility files described by a metadata companion.
type RawReader interface {
	// DiscoverTimestamps performs a metadata-only pass over the observation's
	// files and returns the ordered set of available timestamps without
	// materializing sample data.
	DiscoverTimestamps(ctx context.Context, metafits string, raws []string) ([]float64, error)

	// ReadSlice reads the visibility data restricted to the given timestamps
	// and returns it as a dataset fragment.
	ReadSlice(ctx context.Context, metafits string, raws []string, times []float64, opts ReadOptions) (*Dataset, error)
}

// FlagPolicy selects which flags the reader applies to freshly read data.
type FlagPolicy string

// Recognized flag policies.
const (
	FlagPolicyNone     FlagPolicy = ""
	FlagPolicyOriginal FlagPolicy = "original"
)

// Selection restricts which parts of the data a read materializes.
// SelAnts and SkipAnts are mutually exclusive; the file-set validator
// rejects configurations that populate both.
type Selection struct {
	SelAnts   []string
	SkipAnts  []string
	SelPols   []string
	FreqRange []float64 // Empty, or [low, high] in Hz.
	TimeLimit int       // Maximum timestamps to keep; zero means unlimited.
}

// ReadOptions is the configuration bundle forwarded to RawReader.ReadSlice.
type ReadOptions struct {
	// Diff enables time-differencing of adjacent samples.
	Diff bool

	// FlagInit applies initial flagging during the read.
	FlagInit bool

	// RemoveCoarseBand removes the coarse band shape. Incompatible with
	// low frequency resolutions; off by default.
	RemoveCoarseBand bool

	// CorrectVanVleck applies the Van Vleck correction pass. Slow.
	CorrectVanVleck bool

	// RemoveFlaggedAnts drops antennas the metadata marks as flagged.
	RemoveFlaggedAnts bool

	// FlagChoice selects the flag policy for the read.
	FlagChoice FlagPolicy

	// Select restricts the read to a subset of the data.
	Select Selection
}

// DefaultReadOptions returns the read options used when the caller supplies
// none: differencing and initial flagging on, flagged antennas removed.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Diff:              true,
		FlagInit:          true,
		RemoveFlaggedAnts: true,
	}
}
