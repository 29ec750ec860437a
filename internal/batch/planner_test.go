package batch

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/uvingest/pkg/units"
)

func TestPlan_SingleBatchUnderCeiling(t *testing.T) {
	t.Parallel()

	p := &Planner{}

	// Predicted peak 7 GiB fits under the 10 GiB ceiling.
	batches, err := p.Plan(1, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, batches)
}

func TestPlan_SplitsWithSafetyFactor(t *testing.T) {
	t.Parallel()

	p := &Planner{}

	// Predicted peak 70 GiB over a 10 GiB ceiling: ceil(70/10)*2 = 14.
	batches, err := p.Plan(10, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, 14, batches)
}

func TestPlan_RoundsPartialBatchesUp(t *testing.T) {
	t.Parallel()

	p := &Planner{}

	// Predicted peak 75 GiB: ceil(7.5)*2 = 16.
	batches, err := p.Plan(10, 7.5, 10)
	require.NoError(t, err)
	assert.Equal(t, 16, batches)
}

func TestPlan_ZeroSizeIsCallerBug(t *testing.T) {
	t.Parallel()

	p := &Planner{}

	_, err := p.Plan(0, 7, 10)
	require.ErrorIs(t, err, ErrEmptyFileSet)

	_, err = p.Plan(-1, 7, 10)
	require.ErrorIs(t, err, ErrEmptyFileSet)
}

func TestPlan_DefaultLeakageWhenUnset(t *testing.T) {
	t.Parallel()

	p := &Planner{}

	// Leakage 0 selects the default factor of 7.
	batches, err := p.Plan(10, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 14, batches)
}

func TestPlan_ProbesHostWhenNoCeiling(t *testing.T) {
	t.Parallel()

	p := &Planner{Prober: FixedProber(16 * units.GiB)}

	// Predicted peak 70 GiB over the probed 16 GiB: ceil(4.375)*2 = 10.
	batches, err := p.Plan(10, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, batches)
}

func TestPlan_ErrorWhenProbeFails(t *testing.T) {
	t.Parallel()

	p := &Planner{Prober: FixedProber(0)}

	_, err := p.Plan(10, 7, 0)
	require.ErrorIs(t, err, ErrNoMemoryCeiling)
}

func TestPlan_AdvisoryIsInformational(t *testing.T) {
	t.Parallel()

	p := &Planner{Logger: slog.Default()}

	batches, err := p.Plan(1, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, batches)
}

func TestParseMemTotalBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		memInfo string
		want    uint64
	}{
		{
			name:    "standard kB line",
			memInfo: "MemTotal:       16384000 kB\nMemFree:        1024 kB\n",
			want:    16384000 * 1024,
		},
		{
			name:    "missing line",
			memInfo: "MemFree:        1024 kB\n",
			want:    0,
		},
		{
			name:    "malformed value",
			memInfo: "MemTotal:       lots kB\n",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, parseMemTotalBytes([]byte(tt.memInfo)))
		})
	}
}

func TestAdvisory_MentionsBatchCount(t *testing.T) {
	t.Parallel()

	line := Advisory(10, 70, 10, 14)

	assert.Contains(t, line, "14 batch(es)")
}
