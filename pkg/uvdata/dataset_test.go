package uvdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragment(times []float64, freqs []float64) *Dataset {
	frag := &Dataset{Freqs: freqs}

	for _, ts := range times {
		frag.Times = append(frag.Times, ts)

		for range freqs {
			frag.Data = append(frag.Data, complex(float32(ts), 0))
			frag.Flags = append(frag.Flags, false)
		}
	}

	return frag
}

func TestMerge_FirstFragmentSetsAxes(t *testing.T) {
	t.Parallel()

	d := NewDataset()

	require.NoError(t, d.Merge(fragment([]float64{1, 2}, []float64{150e6, 151e6})))

	assert.Equal(t, []float64{1, 2}, d.Times)
	assert.Equal(t, []float64{150e6, 151e6}, d.Freqs)
	assert.Len(t, d.Data, 4)
	assert.Len(t, d.Flags, 4)
}

func TestMerge_AppendsInTimeOrder(t *testing.T) {
	t.Parallel()

	d := NewDataset()
	freqs := []float64{150e6}

	require.NoError(t, d.Merge(fragment([]float64{1, 2}, freqs)))
	require.NoError(t, d.Merge(fragment([]float64{3, 4}, freqs)))

	assert.Equal(t, []float64{1, 2, 3, 4}, d.Times)
	assert.Len(t, d.Data, 4)
}

func TestMerge_EmptyFragmentIsNoOp(t *testing.T) {
	t.Parallel()

	d := NewDataset()
	require.NoError(t, d.Merge(fragment([]float64{1}, []float64{150e6})))

	require.NoError(t, d.Merge(nil))
	require.NoError(t, d.Merge(NewDataset()))

	assert.Equal(t, []float64{1}, d.Times)
}

func TestMerge_AxisMismatch(t *testing.T) {
	t.Parallel()

	d := NewDataset()
	require.NoError(t, d.Merge(fragment([]float64{1}, []float64{150e6, 151e6})))

	err := d.Merge(fragment([]float64{2}, []float64{150e6}))
	require.ErrorIs(t, err, ErrAxisMismatch)
}

func TestMerge_OutOfOrderFragmentInterleaves(t *testing.T) {
	t.Parallel()

	d := NewDataset()
	freqs := []float64{150e6, 151e6}

	require.NoError(t, d.Merge(fragment([]float64{2, 4}, freqs)))
	require.NoError(t, d.Merge(fragment([]float64{1, 3}, freqs)))

	assert.Equal(t, []float64{1, 2, 3, 4}, d.Times)
	require.Len(t, d.Data, 8)

	// Row data follows its timestamp through the interleave.
	assert.Equal(t, complex(float32(1), 0), d.Data[0])
	assert.Equal(t, complex(float32(2), 0), d.Data[2])
	assert.Equal(t, complex(float32(3), 0), d.Data[4])
	assert.Equal(t, complex(float32(4), 0), d.Data[6])
}

func TestChannelTable_Equal(t *testing.T) {
	t.Parallel()

	a := ChannelTable{{Hardware: 1, Logical: 109, CentreHz: 139.52e6}}
	b := ChannelTable{{Hardware: 1, Logical: 109, CentreHz: 139.52e6}}
	c := ChannelTable{{Hardware: 1, Logical: 110, CentreHz: 139.52e6}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, ChannelTable(nil).Equal(nil))
}

func TestChannelTable_LogicalFor(t *testing.T) {
	t.Parallel()

	table := ChannelTable{{Hardware: 3, Logical: 111}}

	logical, ok := table.LogicalFor(3)
	require.True(t, ok)
	assert.Equal(t, 111, logical)

	_, ok = table.LogicalFor(4)
	assert.False(t, ok)
}
