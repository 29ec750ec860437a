package channel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// fakeMetaReader serves canned channel tables and counts opens.
type fakeMetaReader struct {
	tables map[string]uvdata.ChannelTable
	opens  int
}

func (r *fakeMetaReader) Open(path string) (uvdata.MetafitsHandle, error) {
	r.opens++

	table, ok := r.tables[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", uvdata.ErrNotFound, path)
	}

	return &fakeMetaHandle{table: table}, nil
}

type fakeMetaHandle struct {
	table uvdata.ChannelTable
}

func (h *fakeMetaHandle) ChannelTable() uvdata.ChannelTable { return h.table }
func (h *fakeMetaHandle) Antennas() []uvdata.Antenna        { return nil }
func (h *fakeMetaHandle) Close() error                      { return nil }

var tableA = uvdata.ChannelTable{
	{Hardware: 1, Logical: 109, CentreHz: 139.52e6},
	{Hardware: 2, Logical: 110, CentreHz: 140.80e6},
}

var tableB = uvdata.ChannelTable{
	{Hardware: 1, Logical: 131, CentreHz: 167.68e6},
}

func TestSameChannelLayout_TrivialForZeroOrOne(t *testing.T) {
	t.Parallel()

	checker := NewChecker(&fakeMetaReader{})

	same, err := checker.SameChannelLayout(nil)
	require.NoError(t, err)
	assert.True(t, same)

	same, err = checker.SameChannelLayout([]string{"/d/a.metafits"})
	require.NoError(t, err)
	assert.True(t, same)
}

func TestSameChannelLayout_MatchingTables(t *testing.T) {
	t.Parallel()

	reader := &fakeMetaReader{tables: map[string]uvdata.ChannelTable{
		"/d/a.metafits": tableA,
		"/d/b.metafits": tableA,
	}}
	checker := NewChecker(reader)

	same, err := checker.SameChannelLayout([]string{"/d/a.metafits", "/d/b.metafits"})
	require.NoError(t, err)
	assert.True(t, same)
}

func TestSameChannelLayout_MismatchNamesThePair(t *testing.T) {
	t.Parallel()

	reader := &fakeMetaReader{tables: map[string]uvdata.ChannelTable{
		"/d/a.metafits": tableA,
		"/d/b.metafits": tableA,
		"/d/c.metafits": tableB,
	}}
	checker := NewChecker(reader)

	same, err := checker.SameChannelLayout([]string{"/d/a.metafits", "/d/b.metafits", "/d/c.metafits"})
	assert.False(t, same)
	require.ErrorIs(t, err, ErrChannelMismatch)
	assert.Contains(t, err.Error(), "/d/b.metafits")
	assert.Contains(t, err.Error(), "/d/c.metafits")
}

func TestSameChannelLayout_OpenErrorPropagates(t *testing.T) {
	t.Parallel()

	checker := NewChecker(&fakeMetaReader{})

	_, err := checker.SameChannelLayout([]string{"/d/a.metafits", "/d/b.metafits"})
	require.ErrorIs(t, err, uvdata.ErrNotFound)
}

func TestChannelTableCache_OpensEachFileOnce(t *testing.T) {
	t.Parallel()

	reader := &fakeMetaReader{tables: map[string]uvdata.ChannelTable{
		"/d/a.metafits": tableA,
		"/d/b.metafits": tableA,
		"/d/c.metafits": tableA,
	}}
	checker := NewChecker(reader)

	paths := []string{"/d/a.metafits", "/d/b.metafits", "/d/c.metafits"}

	_, err := checker.SameChannelLayout(paths)
	require.NoError(t, err)

	// Adjacent pairwise comparison touches b twice; the cache absorbs it.
	assert.Equal(t, 3, reader.opens)

	_, err = checker.SameChannelLayout(paths)
	require.NoError(t, err)
	assert.Equal(t, 3, reader.opens)
}

func TestAssignChannels_DirectConvention(t *testing.T) {
	t.Parallel()

	checker := NewChecker(&fakeMetaReader{})

	assigned, err := checker.AssignChannels(
		[]string{"/d/1370000000_20230601120000_ch137_000.fits"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 137, assigned["/d/1370000000_20230601120000_ch137_000.fits"])
}

func TestAssignChannels_HardwareConvention(t *testing.T) {
	t.Parallel()

	reader := &fakeMetaReader{tables: map[string]uvdata.ChannelTable{
		"/d/obs.metafits": tableA,
	}}
	checker := NewChecker(reader)

	assigned, err := checker.AssignChannels(
		[]string{"/d/1061313128_20130823175535_gpubox02_00.fits"},
		[]string{"/d/obs.metafits"})
	require.NoError(t, err)

	assert.Equal(t, 110, assigned["/d/1061313128_20130823175535_gpubox02_00.fits"])
}

func TestAssignChannels_HardwareConventionWithoutMetadata(t *testing.T) {
	t.Parallel()

	checker := NewChecker(&fakeMetaReader{})

	_, err := checker.AssignChannels(
		[]string{"/d/1061313128_20130823175535_gpubox02_00.fits"}, nil)
	require.ErrorIs(t, err, ErrUnresolvableChannel)
	assert.Contains(t, err.Error(), "no metadata")
}

func TestAssignChannels_UnknownConvention(t *testing.T) {
	t.Parallel()

	checker := NewChecker(&fakeMetaReader{})

	_, err := checker.AssignChannels([]string{"/d/mystery.fits"}, nil)
	require.ErrorIs(t, err, ErrUnresolvableChannel)
	assert.Contains(t, err.Error(), "mystery.fits")
}

func TestAssignChannels_HardwareNotInTable(t *testing.T) {
	t.Parallel()

	reader := &fakeMetaReader{tables: map[string]uvdata.ChannelTable{
		"/d/obs.metafits": tableB,
	}}
	checker := NewChecker(reader)

	_, err := checker.AssignChannels(
		[]string{"/d/1061313128_20130823175535_gpubox09_00.fits"},
		[]string{"/d/obs.metafits"})
	require.ErrorIs(t, err, ErrUnresolvableChannel)
}
