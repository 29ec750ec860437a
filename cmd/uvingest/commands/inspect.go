package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/uvingest/internal/fileset"
	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// Inspect output formats.
const (
	formatTable = "table"
	formatYAML  = "yaml"
)

// ErrUnknownFormat indicates an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown format; use table or yaml")

// inspectReport is the yaml-facing shape of an inspection.
type inspectReport struct {
	Groups       map[string][]string `yaml:"groups"`
	Observations []observationEntry  `yaml:"observations,omitempty"`
	SizeBytes    int64               `yaml:"size_bytes"`
	Violations   []string            `yaml:"violations,omitempty"`
}

type observationEntry struct {
	ObsID    string   `yaml:"obsid"`
	Metafits string   `yaml:"metafits"`
	RawFiles []string `yaml:"raw_files"`
}

// NewInspectCommand creates the inspect command: classification and
// validation preview without any data I/O.
func NewInspectCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect FILES...",
		Short: "Preview classification and validation of input files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInspect(args, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "output format (table or yaml)")

	return cmd
}

func runInspect(args []string, format string) error {
	groups := fileset.Classify(args)

	report := inspectReport{
		Groups:    make(map[string][]string, len(groups)),
		SizeBytes: fileset.SizeOf(args),
	}

	for tag, files := range groups {
		report.Groups[string(tag)] = files
	}

	fs, err := fileset.New(args, uvdata.Selection{})

	var verr *fileset.ValidationError
	if errors.As(err, &verr) {
		report.Violations = verr.Violations
	} else if err != nil {
		return err
	}

	if fs != nil {
		for _, obs := range fs.Observations() {
			report.Observations = append(report.Observations, observationEntry{
				ObsID:    obs.ObsID,
				Metafits: obs.Metafits,
				RawFiles: obs.RawFiles,
			})
		}
	}

	switch format {
	case formatTable:
		renderInspectTable(groups, report)
	case formatYAML:
		if err := yaml.NewEncoder(os.Stdout).Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	default:
		return ErrUnknownFormat
	}

	if len(report.Violations) > 0 {
		printViolations(report.Violations)

		return ErrValidationFailed
	}

	return nil
}

func renderInspectTable(groups map[fileset.Type][]string, report inspectReport) {
	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.SetStyle(table.StyleLight)
	writer.AppendHeader(table.Row{"type", "files", "size"})

	for _, tag := range fileset.RecognizedTypes() {
		files, ok := groups[tag]
		if !ok {
			continue
		}

		writer.AppendRow(table.Row{string(tag), len(files), humanize.IBytes(uint64(fileset.SizeOf(files)))})
	}

	for tag, files := range groups {
		if isRecognized(tag) {
			continue
		}

		name := string(tag)
		if name == "" {
			name = "(no extension)"
		}

		writer.AppendRow(table.Row{name, len(files), humanize.IBytes(uint64(fileset.SizeOf(files)))})
	}

	writer.AppendFooter(table.Row{"total", "", humanize.IBytes(uint64(report.SizeBytes))})
	writer.Render()

	if len(report.Observations) > 0 {
		obsWriter := table.NewWriter()
		obsWriter.SetOutputMirror(os.Stdout)
		obsWriter.SetStyle(table.StyleLight)
		obsWriter.AppendHeader(table.Row{"obsid", "metafits", "raw files"})

		for _, obs := range report.Observations {
			obsWriter.AppendRow(table.Row{obs.ObsID, obs.Metafits, len(obs.RawFiles)})
		}

		obsWriter.Render()
	}
}

func isRecognized(tag fileset.Type) bool {
	for _, known := range fileset.RecognizedTypes() {
		if tag == known {
			return true
		}
	}

	return false
}
