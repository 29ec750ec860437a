package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/uvingest/internal/channel"
	"github.com/Sumatoshi-tech/uvingest/internal/fileset"
	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// ErrNoProcessor indicates no registered processor can handle the file set's
// type composition.
var ErrNoProcessor = errors.New("ingest: no processor handles this file set")

// Processor is a file-type-specific ingestion strategy.
type Processor interface {
	// CanHandle reports whether the processor handles the set's composition.
	CanHandle(fs *fileset.FileSet) bool

	// Validate runs the processor's own consistency checks over the set.
	Validate(fs *fileset.FileSet) error

	// Read accumulates the set's data into acc.
	Read(ctx context.Context, acc *uvdata.Dataset, fs *fileset.FileSet) error
}

// FITSProcessor ingests raw fits files grouped per observation with their
// metafits companions.
type FITSProcessor struct {
	acc     *Accumulator
	checker *channel.Checker
}

// NewFITSProcessor returns a processor driving the given accumulator, using
// the checker for channel consistency validation.
func NewFITSProcessor(acc *Accumulator, checker *channel.Checker) *FITSProcessor {
	return &FITSProcessor{acc: acc, checker: checker}
}

// CanHandle reports whether raw fits files are present.
func (p *FITSProcessor) CanHandle(fs *fileset.FileSet) bool {
	return fs.HasType(fileset.TypeFits)
}

// Validate confirms the metadata files agree on channel layout and that
// every raw file resolves to a channel number. Fatal on the first
// inconsistency, with the offending file names in the error.
func (p *FITSProcessor) Validate(fs *fileset.FileSet) error {
	metafits := fs.FilesOfType(fileset.TypeMetafits)

	if _, err := p.checker.SameChannelLayout(metafits); err != nil {
		return fmt.Errorf("validate channel layout: %w", err)
	}

	if _, err := p.checker.AssignChannels(fs.FilesOfType(fileset.TypeFits), metafits); err != nil {
		return fmt.Errorf("validate channel assignment: %w", err)
	}

	return nil
}

// Read accumulates every observation of the set.
func (p *FITSProcessor) Read(ctx context.Context, acc *uvdata.Dataset, fs *fileset.FileSet) error {
	return p.acc.Read(ctx, acc, fs)
}

// SelectProcessor returns the first processor that handles the set.
func SelectProcessor(processors []Processor, fs *fileset.FileSet) (Processor, error) {
	for _, proc := range processors {
		if proc.CanHandle(fs) {
			return proc, nil
		}
	}

	return nil, ErrNoProcessor
}
