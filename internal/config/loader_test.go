package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.True(t, cfg.Read.Diff)
	assert.True(t, cfg.Read.FlagInit)
	assert.False(t, cfg.Read.RemoveCoarseBand)
	assert.True(t, cfg.Read.RemoveFlaggedAnts)
	assert.Equal(t, BatchAuto, cfg.Batch.Batches)
	assert.InDelta(t, DefaultBatchLeakageFactor, cfg.Batch.LeakageFactor, 1e-9)
	assert.Zero(t, cfg.Batch.MemoryGB)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".uvingest.yaml")
	content := []byte(`
read:
  diff: false
  flag_choice: original
select:
  skip_ants: [Tile051]
  time_limit: 20
batch:
  batches: "25"
  leakage_factor: 5.5
  memory_gb: 12
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.Read.Diff)
	assert.True(t, cfg.Read.FlagInit) // untouched default
	assert.Equal(t, "original", cfg.Read.FlagChoice)
	assert.Equal(t, []string{"Tile051"}, cfg.Select.SkipAnts)
	assert.Equal(t, 20, cfg.Select.TimeLimit)
	assert.Equal(t, "25", cfg.Batch.Batches)
	assert.InDelta(t, 5.5, cfg.Batch.LeakageFactor, 1e-9)
	assert.InDelta(t, 12, cfg.Batch.MemoryGB, 1e-9)
}

func TestLoadConfig_InvalidFileFailsValidation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".uvingest.yaml")
	content := []byte(`
batch:
  batches: "sometimes"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidBatches)
}
