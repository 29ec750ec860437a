package commands

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/uvingest/internal/batch"
	"github.com/Sumatoshi-tech/uvingest/internal/channel"
	"github.com/Sumatoshi-tech/uvingest/internal/config"
	"github.com/Sumatoshi-tech/uvingest/internal/fileset"
	"github.com/Sumatoshi-tech/uvingest/internal/ingest"
	"github.com/Sumatoshi-tech/uvingest/internal/observability"
	"github.com/Sumatoshi-tech/uvingest/pkg/units"
	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// metricsReadTimeout bounds header reads on the scrape endpoint.
const metricsReadTimeout = 10 * time.Second

// ReadCommand holds configuration for the read command.
type ReadCommand struct {
	configPath string

	selAnts   []string
	skipAnts  []string
	selPols   []string
	freqRange []float64
	timeLimit int

	batches  string
	leakage  float64
	memoryGB float64

	diff              bool
	flagInit          bool
	removeCoarseBand  bool
	correctVanVleck   bool
	removeFlaggedAnts bool
	flagChoice        string

	metricsListen string
}

// NewReadCommand creates the read command: classify, validate, plan, and
// accumulate the given files into one in-memory dataset.
func NewReadCommand() *cobra.Command {
	rc := &ReadCommand{}

	cmd := &cobra.Command{
		Use:   "read FILES...",
		Short: "Read visibility files into one accumulated dataset",
		Long: `Read classifies and validates the input files, plans a memory-bounded
batch count, and accumulates the data observation by observation through the
registered decoder. Validation failures exit non-zero with every violation
on stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.run(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&rc.configPath, "config", "", "config file path")

	flags.StringSliceVar(&rc.selAnts, "sel-ants", nil, "antennas to include")
	flags.StringSliceVar(&rc.skipAnts, "skip-ants", nil, "antennas to exclude")
	flags.StringSliceVar(&rc.selPols, "sel-pols", nil, "polarizations to include")
	flags.Float64SliceVar(&rc.freqRange, "freq-range", nil, "frequency range [low,high] in Hz")
	flags.IntVar(&rc.timeLimit, "time-limit", 0, "maximum timestamps to keep (0 = unlimited)")

	flags.StringVar(&rc.batches, "batches", config.BatchAuto, "\"auto\" or timestamps per read")
	flags.Float64Var(&rc.leakage, "leakage", batch.DefaultLeakageFactor, "memory leakage factor")
	flags.Float64Var(&rc.memoryGB, "memory-gb", 0, "memory ceiling in GiB (0 = probe host)")

	flags.BoolVar(&rc.diff, "diff", config.DefaultReadDiff, "difference adjacent timesteps")
	flags.BoolVar(&rc.flagInit, "flag-init", config.DefaultReadFlagInit, "apply initial flagging")
	flags.BoolVar(&rc.removeCoarseBand, "remove-coarse-band", config.DefaultReadRemoveCoarseBand, "remove coarse band shape")
	flags.BoolVar(&rc.correctVanVleck, "correct-van-vleck", config.DefaultReadCorrectVanVleck, "apply Van Vleck correction")
	flags.BoolVar(&rc.removeFlaggedAnts, "remove-flagged-ants", config.DefaultReadRemoveFlaggedAnts, "drop flagged antennas")
	flags.StringVar(&rc.flagChoice, "flag-choice", config.DefaultReadFlagChoice, "flag policy (empty or \"original\")")

	flags.StringVar(&rc.metricsListen, "metrics-listen", "", "address for the Prometheus scrape endpoint")

	return cmd
}

func (rc *ReadCommand) run(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	cfg, err := rc.buildConfig(cmd)
	if err != nil {
		return err
	}

	fs, err := fileset.New(args, cfg.Selection())
	if err != nil {
		return reportIfInvalid(err)
	}

	metaReader, err := uvdata.DefaultMetafitsReader()
	if err != nil {
		return err
	}

	rawReader, err := uvdata.DefaultRawReader()
	if err != nil {
		return err
	}

	metrics, err := rc.startMetrics(cfg, logger)
	if err != nil {
		return err
	}

	plan, err := rc.resolvePlan(cfg, fs, logger)
	if err != nil {
		return err
	}

	accumulator := &ingest.Accumulator{
		Raw:     rawReader,
		Opts:    cfg.ReadOptions(),
		Plan:    plan,
		Logger:  logger,
		Metrics: metrics,
	}

	checker := channel.NewChecker(metaReader)

	processors := []ingest.Processor{
		ingest.NewFITSProcessor(accumulator, checker),
	}

	processor, err := ingest.SelectProcessor(processors, fs)
	if err != nil {
		return err
	}

	if err := processor.Validate(fs); err != nil {
		return err
	}

	dataset := uvdata.NewDataset()

	if err := processor.Read(cmd.Context(), dataset, fs); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(os.Stdout, "accumulated %d timestamps across %d observation(s)\n",
		dataset.NumTimes(), len(fs.Observations()))

	return nil
}

// buildConfig loads the config file and applies explicit flag overrides.
func (rc *ReadCommand) buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("sel-ants") {
		cfg.Select.SelAnts = rc.selAnts
	}

	if flags.Changed("skip-ants") {
		cfg.Select.SkipAnts = rc.skipAnts
	}

	if flags.Changed("sel-pols") {
		cfg.Select.SelPols = rc.selPols
	}

	if flags.Changed("freq-range") {
		cfg.Select.FreqRange = rc.freqRange
	}

	if flags.Changed("time-limit") {
		cfg.Select.TimeLimit = rc.timeLimit
	}

	if flags.Changed("batches") {
		cfg.Batch.Batches = rc.batches
	}

	if flags.Changed("leakage") {
		cfg.Batch.LeakageFactor = rc.leakage
	}

	if flags.Changed("memory-gb") {
		cfg.Batch.MemoryGB = rc.memoryGB
	}

	if flags.Changed("diff") {
		cfg.Read.Diff = rc.diff
	}

	if flags.Changed("flag-init") {
		cfg.Read.FlagInit = rc.flagInit
	}

	if flags.Changed("remove-coarse-band") {
		cfg.Read.RemoveCoarseBand = rc.removeCoarseBand
	}

	if flags.Changed("correct-van-vleck") {
		cfg.Read.CorrectVanVleck = rc.correctVanVleck
	}

	if flags.Changed("remove-flagged-ants") {
		cfg.Read.RemoveFlaggedAnts = rc.removeFlaggedAnts
	}

	if flags.Changed("flag-choice") {
		cfg.Read.FlagChoice = rc.flagChoice
	}

	if flags.Changed("metrics-listen") {
		cfg.Batch.MetricsListen = rc.metricsListen
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolvePlan turns the batches knob into a concrete BatchPlan, running the
// planner when automatic sizing was requested.
func (rc *ReadCommand) resolvePlan(cfg *config.Config, fs *fileset.FileSet, logger *slog.Logger) (ingest.BatchPlan, error) {
	auto, step, err := cfg.StepOverride()
	if err != nil {
		return ingest.BatchPlan{}, err
	}

	if !auto {
		return ingest.BatchPlan{Step: step}, nil
	}

	planner := batch.NewPlanner(logger)

	batches, err := planner.Plan(units.BytesToGiB(fs.SizeBytes()), cfg.Batch.LeakageFactor, cfg.Batch.MemoryGB)
	if err != nil {
		return ingest.BatchPlan{}, err
	}

	return ingest.BatchPlan{Batches: batches}, nil
}

// startMetrics exposes the Prometheus scrape endpoint when configured and
// returns the ingest instruments. Nil metrics record nothing.
func (rc *ReadCommand) startMetrics(cfg *config.Config, logger *slog.Logger) (*ingest.Metrics, error) {
	if cfg.Batch.MetricsListen == "" {
		return nil, nil
	}

	handler, meter, err := observability.NewPrometheus()
	if err != nil {
		return nil, err
	}

	metrics, err := ingest.NewMetrics(meter)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:              cfg.Batch.MetricsListen,
		Handler:           handler,
		ReadHeaderTimeout: metricsReadTimeout,
	}

	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("metrics endpoint failed", "err", serveErr)
		}
	}()

	return metrics, nil
}
