package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/uvingest/internal/batch"
	"github.com/Sumatoshi-tech/uvingest/internal/fileset"
	"github.com/Sumatoshi-tech/uvingest/pkg/units"
	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// NewPlanCommand creates the plan command: preview the batch count the
// planner would choose for the given files.
func NewPlanCommand() *cobra.Command {
	var (
		leakage  float64
		memoryGB float64
	)

	cmd := &cobra.Command{
		Use:   "plan FILES...",
		Short: "Preview the memory-bounded batch plan for input files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args, leakage, memoryGB)
		},
	}

	cmd.Flags().Float64Var(&leakage, "leakage", batch.DefaultLeakageFactor, "memory leakage factor")
	cmd.Flags().Float64Var(&memoryGB, "memory-gb", 0, "memory ceiling in GiB (0 = probe host)")

	return cmd
}

func runPlan(cmd *cobra.Command, args []string, leakage, memoryGB float64) error {
	fs, err := fileset.New(args, uvdata.Selection{})
	if err != nil {
		return reportIfInvalid(err)
	}

	planner := batch.NewPlanner(newLogger(cmd))

	sizeGB := units.BytesToGiB(fs.SizeBytes())

	batches, err := planner.Plan(sizeGB, leakage, memoryGB)
	if err != nil {
		return err
	}

	ceiling := memoryGB
	if ceiling <= 0 {
		ceiling = units.BytesToGiB(int64(batch.HostProber{}.TotalMemoryBytes()))
	}

	fmt.Fprintln(os.Stdout, batch.Advisory(sizeGB, sizeGB*leakage, ceiling, batches))

	return nil
}
