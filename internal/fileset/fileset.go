// Package fileset classifies and validates collections of telescope input
// files before any expensive I/O begins. A FileSet groups the inputs by
// file-type tag and, when raw visibility files are present, by observation
// identifier; construction fails with the full aggregated validation report
// when the collection is not mutually compatible.
package fileset

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/uvingest/pkg/uvdata"
)

// Type is a file-type tag derived from a path's extension.
type Type string

// Recognized file types. Adding a type requires updating both this set and
// the exclusiveFamilies table below.
const (
	// TypeFits is a raw visibility file: one time chunk of uncalibrated
	// samples for one observation and one hardware channel group.
	TypeFits Type = "fits"

	// TypeMetafits is the metadata companion describing an observation's
	// antenna layout, channel mapping, and flagging state.
	TypeMetafits Type = "metafits"

	// TypeMS is a measurement-set visibility container.
	TypeMS Type = "ms"

	// TypeUVFits is the legacy uvfits visibility container.
	TypeUVFits Type = "uvfits"

	// TypeUVH5 is the uvh5 visibility container.
	TypeUVH5 Type = "uvh5"
)

// typeUVFAlias is accepted on input and folded into TypeUVFits during
// classification.
const typeUVFAlias Type = "uvf"

// recognizedTypes is the fixed, versioned enumeration of supported tags,
// in the order they are reported to users.
var recognizedTypes = []Type{TypeFits, TypeMetafits, TypeMS, TypeUVFits, TypeUVH5}

// exclusiveFamilies lists the mutually exclusive visibility-container pairs.
// Versioned together with recognizedTypes.
var exclusiveFamilies = [][2]Type{
	{TypeUVFits, TypeUVH5},
	{TypeMS, TypeUVFits},
	{TypeMS, TypeUVH5},
}

// RecognizedTypes returns the supported type tags in reporting order.
func RecognizedTypes() []Type {
	return slices.Clone(recognizedTypes)
}

// typeOf derives the type tag from a path's final name component. The
// extension is taken case-sensitively with no normalization; paths without
// an extension map to the empty tag.
func typeOf(path string) Type {
	ext := filepath.Ext(filepath.Base(path))
	tag := Type(strings.TrimPrefix(ext, "."))

	if tag == typeUVFAlias {
		return TypeUVFits
	}

	return tag
}

// obsIDOf derives the observation identifier: the first underscore-delimited
// token of the filename without extension. A name with no underscore yields
// the whole stem, which is accepted as its own identifier.
func obsIDOf(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	obsid, _, _ := strings.Cut(stem, "_")

	return obsid
}

// Classify groups paths by file-type tag. Group values are sorted and
// deduplicated, so two calls on reordered input produce identical groups.
func Classify(paths []string) map[Type][]string {
	groups := make(map[Type][]string)

	for _, p := range paths {
		tag := typeOf(p)
		groups[tag] = append(groups[tag], p)
	}

	for tag, files := range groups {
		slices.Sort(files)
		groups[tag] = slices.Compact(files)
	}

	return groups
}

// ClassifyByObservation additionally keys the groups by observation
// identifier. Callers invoke it only when raw visibility files are present;
// classification is skipped otherwise to avoid needless work.
func ClassifyByObservation(paths []string) map[string]map[Type][]string {
	groups := make(map[string]map[Type][]string)

	for _, p := range paths {
		obsid := obsIDOf(p)

		byType := groups[obsid]
		if byType == nil {
			byType = make(map[Type][]string)
			groups[obsid] = byType
		}

		tag := typeOf(p)
		byType[tag] = append(byType[tag], p)
	}

	for _, byType := range groups {
		for tag, files := range byType {
			slices.Sort(files)
			byType[tag] = slices.Compact(files)
		}
	}

	return groups
}

// FileSet is the classified, validated view of one input collection.
// Immutable after construction; downstream components borrow it read-only.
type FileSet struct {
	paths     []string
	groups    map[Type][]string
	obsGroups map[string]map[Type][]string
	selection uvdata.Selection
}

// New classifies the paths and runs the full compatibility battery. When any
// check fails the whole construction fails with a *ValidationError carrying
// every violation; a FileSet is never partially valid.
func New(paths []string, sel uvdata.Selection) (*FileSet, error) {
	fs := &FileSet{
		paths:     slices.Clone(paths),
		groups:    Classify(paths),
		selection: sel,
	}

	if fs.HasType(TypeFits) {
		fs.obsGroups = ClassifyByObservation(paths)
	}

	if report := validate(fs); len(report) > 0 {
		return nil, &ValidationError{Violations: report}
	}

	return fs, nil
}

// Paths returns the original input list.
func (f *FileSet) Paths() []string {
	return slices.Clone(f.paths)
}

// Selection returns the selection filters the set was constructed with.
func (f *FileSet) Selection() uvdata.Selection {
	return f.selection
}

// HasType reports whether any input file carries the given tag.
func (f *FileSet) HasType(tag Type) bool {
	_, ok := f.groups[tag]

	return ok
}

// FilesOfType returns the ordered files carrying the given tag. Unrecognized
// or absent tags yield an empty slice.
func (f *FileSet) FilesOfType(tag Type) []string {
	return slices.Clone(f.groups[tag])
}

// Types returns the type tags present in the set, sorted.
func (f *FileSet) Types() []Type {
	tags := make([]Type, 0, len(f.groups))
	for tag := range f.groups {
		tags = append(tags, tag)
	}

	slices.Sort(tags)

	return tags
}

// Observation is a read-only per-observation view: the identifier, its
// metadata companion, and its ordered raw visibility files.
type Observation struct {
	ObsID    string
	Metafits string
	RawFiles []string
}

// MetafitsStem returns the metadata file's name without directory or
// extension.
func (o Observation) MetafitsStem() string {
	base := filepath.Base(o.Metafits)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Observations derives the per-observation views, ordered by identifier.
// Empty when the set holds no raw visibility files.
func (f *FileSet) Observations() []Observation {
	if f.obsGroups == nil {
		return nil
	}

	obsids := make([]string, 0, len(f.obsGroups))

	for obsid, byType := range f.obsGroups {
		if len(byType[TypeFits]) == 0 {
			continue
		}

		obsids = append(obsids, obsid)
	}

	slices.Sort(obsids)

	observations := make([]Observation, 0, len(obsids))

	for _, obsid := range obsids {
		byType := f.obsGroups[obsid]
		observations = append(observations, Observation{
			ObsID:    obsid,
			Metafits: byType[TypeMetafits][0],
			RawFiles: slices.Clone(byType[TypeFits]),
		})
	}

	return observations
}

// SizeBytes returns the on-disk size of every input path.
func (f *FileSet) SizeBytes() int64 {
	return SizeOf(f.paths)
}

// SizeOf returns the on-disk size of the given paths. Container formats
// that are directories (measurement sets) are walked recursively. Paths that
// cannot be stat'ed contribute zero; existence is the decoder's concern.
func SizeOf(paths []string) int64 {
	var total int64

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}

		if !info.IsDir() {
			total += info.Size()

			continue
		}

		_ = filepath.WalkDir(p, func(_ string, entry fs.DirEntry, err error) error {
			if err != nil || entry.IsDir() {
				return nil
			}

			if fi, infoErr := entry.Info(); infoErr == nil {
				total += fi.Size()
			}

			return nil
		})
	}

	return total
}
