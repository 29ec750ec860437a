// Package channel verifies that an observation's files agree on channel
// layout and resolves a channel number for every raw visibility file, either
// directly from the filename or via the metadata hardware-to-logical table.
package channel

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// Sentinel errors.
var (
	// ErrChannelMismatch indicates two metadata files disagree on channel layout.
	ErrChannelMismatch = errors.New("channel: layout mismatch")

	// ErrUnresolvableChannel indicates a raw file's channel number could not
	// be determined from either naming convention.
	ErrUnresolvableChannel = errors.New("channel: unresolvable channel")
)

// tableCacheSize bounds the memoized channel tables. Metadata files are
// re-read across the consistency check and channel assignment; 128 entries
// comfortably covers every observation of a single read operation.
const tableCacheSize = 128

// Raw visibility filename conventions. The modern convention carries the
// logical channel directly (_ch123_); the legacy convention carries a
// hardware box number (_gpubox12_) that must be mapped through the metadata
// channel table.
var (
	directChannelRe   = regexp.MustCompile(`_ch(\d{1,3})_`)
	hardwareChannelRe = regexp.MustCompile(`_gpubox(\d{1,2})_`)
)

// Checker validates channel consistency through the metadata reader
// collaborator. Channel tables are memoized in a bounded LRU owned by the
// checker, so repeated checks against the same metadata file open it once.
type Checker struct {
	meta   uvdata.MetafitsReader
	tables *lru.Cache[string, uvdata.ChannelTable]
}

// NewChecker returns a checker backed by the given metadata reader.
func NewChecker(meta uvdata.MetafitsReader) *Checker {
	cache, _ := lru.New[string, uvdata.ChannelTable](tableCacheSize)

	return &Checker{meta: meta, tables: cache}
}

// channelTable returns the metadata file's channel table, from cache when
// possible.
func (c *Checker) channelTable(path string) (uvdata.ChannelTable, error) {
	if table, ok := c.tables.Get(path); ok {
		return table, nil
	}

	handle, err := c.meta.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metafits %s: %w", path, err)
	}
	defer handle.Close()

	table := handle.ChannelTable()
	c.tables.Add(path, table)

	return table, nil
}

// SameChannelLayout reports whether all metadata files agree on channel
// layout. Trivially true for zero or one path. For two or more, adjacent
// pairs are compared for exact equality, short-circuiting on the first
// mismatch; the returned error names the disagreeing pair.
func (c *Checker) SameChannelLayout(metafitsPaths []string) (bool, error) {
	if len(metafitsPaths) <= 1 {
		return true, nil
	}

	for i := 0; i < len(metafitsPaths)-1; i++ {
		left, err := c.channelTable(metafitsPaths[i])
		if err != nil {
			return false, err
		}

		right, err := c.channelTable(metafitsPaths[i+1])
		if err != nil {
			return false, err
		}

		if !left.Equal(right) {
			return false, fmt.Errorf("%w: channels do not match between %s and %s",
				ErrChannelMismatch, metafitsPaths[i], metafitsPaths[i+1])
		}
	}

	return true, nil
}

// AssignChannels resolves a logical channel number for every raw visibility
// file. Files following the direct convention carry the channel in their
// name; files following the hardware convention are mapped through the first
// metadata file's channel table. A file matching neither convention, or a
// hardware-convention file without metadata, fails with
// ErrUnresolvableChannel naming the file.
func (c *Checker) AssignChannels(rawPaths, metafitsPaths []string) (map[string]int, error) {
	assigned := make(map[string]int, len(rawPaths))

	for _, raw := range rawPaths {
		ch, err := c.assignOne(raw, metafitsPaths)
		if err != nil {
			return nil, err
		}

		assigned[raw] = ch
	}

	return assigned, nil
}

func (c *Checker) assignOne(raw string, metafitsPaths []string) (int, error) {
	if m := directChannelRe.FindStringSubmatch(raw); m != nil {
		ch, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w: bad channel token in %s", ErrUnresolvableChannel, raw)
		}

		return ch, nil
	}

	m := hardwareChannelRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, fmt.Errorf("%w: %s matches no known naming convention", ErrUnresolvableChannel, raw)
	}

	if len(metafitsPaths) == 0 {
		return 0, fmt.Errorf("%w: %s uses the hardware convention but no metadata was supplied",
			ErrUnresolvableChannel, raw)
	}

	hardware, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: bad hardware token in %s", ErrUnresolvableChannel, raw)
	}

	table, err := c.channelTable(metafitsPaths[0])
	if err != nil {
		return 0, err
	}

	logical, ok := table.LogicalFor(hardware)
	if !ok {
		return 0, fmt.Errorf("%w: hardware channel %d of %s not present in metadata",
			ErrUnresolvableChannel, hardware, raw)
	}

	return logical, nil
}
