// Package config holds the uvingest runtime configuration: read options
// forwarded to the decoders, selection filters, and batch sizing knobs.
package config

import (
	"errors"
	"strconv"

	"github.com/Sumatoshi-tech/uvingest/internal/batch"
	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// Config is the top-level configuration struct for uvingest.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Read   ReadConfig   `mapstructure:"read"`
	Select SelectConfig `mapstructure:"select"`
	Batch  BatchConfig  `mapstructure:"batch"`
}

// ReadConfig holds the decode options forwarded to the raw-data reader.
type ReadConfig struct {
	Diff              bool   `mapstructure:"diff"`
	FlagInit          bool   `mapstructure:"flag_init"`
	RemoveCoarseBand  bool   `mapstructure:"remove_coarse_band"`
	CorrectVanVleck   bool   `mapstructure:"correct_van_vleck"`
	RemoveFlaggedAnts bool   `mapstructure:"remove_flagged_ants"`
	FlagChoice        string `mapstructure:"flag_choice"`
}

// SelectConfig holds the selection filters applied during the read.
type SelectConfig struct {
	SelAnts   []string  `mapstructure:"sel_ants"`
	SkipAnts  []string  `mapstructure:"skip_ants"`
	SelPols   []string  `mapstructure:"sel_pols"`
	FreqRange []float64 `mapstructure:"freq_range"`
	TimeLimit int       `mapstructure:"time_limit"`
}

// BatchConfig holds batch sizing knobs.
type BatchConfig struct {
	// Batches is "auto" or a positive integer step size (timestamps per read).
	Batches string `mapstructure:"batches"`

	LeakageFactor float64 `mapstructure:"leakage_factor"`

	// MemoryGB overrides the probed host-memory ceiling when positive.
	MemoryGB float64 `mapstructure:"memory_gb"`

	// MetricsListen is the optional address of the Prometheus scrape endpoint.
	MetricsListen string `mapstructure:"metrics_listen"`
}

// Defaults.
const (
	DefaultReadDiff              = true
	DefaultReadFlagInit          = true
	DefaultReadRemoveCoarseBand  = false
	DefaultReadCorrectVanVleck   = false
	DefaultReadRemoveFlaggedAnts = true
	DefaultReadFlagChoice        = ""

	DefaultBatchBatches       = "auto"
	DefaultBatchLeakageFactor = batch.DefaultLeakageFactor
)

// BatchAuto is the batches value requesting automatic computation.
const BatchAuto = "auto"

// freqRangeLen is the required length of a non-empty freq_range.
const freqRangeLen = 2

// Validation sentinel errors.
var (
	ErrInvalidBatches       = errors.New("batch.batches must be \"auto\" or a positive integer")
	ErrInvalidLeakageFactor = errors.New("batch.leakage_factor must be positive")
	ErrInvalidMemoryCeiling = errors.New("batch.memory_gb must be non-negative")
	ErrInvalidFlagChoice    = errors.New("read.flag_choice must be empty or \"original\"")
	ErrInvalidFreqRange     = errors.New("select.freq_range must be empty or [low, high] with low < high")
	ErrInvalidTimeLimit     = errors.New("select.time_limit must be non-negative")
)

// Validate checks all fields and returns the first invalid one.
func (c *Config) Validate() error {
	if _, _, err := c.StepOverride(); err != nil {
		return err
	}

	if c.Batch.LeakageFactor <= 0 {
		return ErrInvalidLeakageFactor
	}

	if c.Batch.MemoryGB < 0 {
		return ErrInvalidMemoryCeiling
	}

	switch uvdata.FlagPolicy(c.Read.FlagChoice) {
	case uvdata.FlagPolicyNone, uvdata.FlagPolicyOriginal:
	default:
		return ErrInvalidFlagChoice
	}

	if n := len(c.Select.FreqRange); n != 0 {
		if n != freqRangeLen || c.Select.FreqRange[0] >= c.Select.FreqRange[1] {
			return ErrInvalidFreqRange
		}
	}

	if c.Select.TimeLimit < 0 {
		return ErrInvalidTimeLimit
	}

	return nil
}

// StepOverride resolves the batches knob: auto=true requests planner-driven
// sizing, otherwise step is the explicit timestamps-per-read count.
func (c *Config) StepOverride() (auto bool, step int, err error) {
	if c.Batch.Batches == "" || c.Batch.Batches == BatchAuto {
		return true, 0, nil
	}

	step, convErr := strconv.Atoi(c.Batch.Batches)
	if convErr != nil || step <= 0 {
		return false, 0, ErrInvalidBatches
	}

	return false, step, nil
}

// Selection returns the selection filters as the collaborator-facing bundle.
func (c *Config) Selection() uvdata.Selection {
	return uvdata.Selection{
		SelAnts:   c.Select.SelAnts,
		SkipAnts:  c.Select.SkipAnts,
		SelPols:   c.Select.SelPols,
		FreqRange: c.Select.FreqRange,
		TimeLimit: c.Select.TimeLimit,
	}
}

// ReadOptions returns the decode option bundle, selection included.
func (c *Config) ReadOptions() uvdata.ReadOptions {
	return uvdata.ReadOptions{
		Diff:              c.Read.Diff,
		FlagInit:          c.Read.FlagInit,
		RemoveCoarseBand:  c.Read.RemoveCoarseBand,
		CorrectVanVleck:   c.Read.CorrectVanVleck,
		RemoveFlaggedAnts: c.Read.RemoveFlaggedAnts,
		FlagChoice:        uvdata.FlagPolicy(c.Read.FlagChoice),
		Select:            c.Selection(),
	}
}
