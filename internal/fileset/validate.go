package fileset

import (
	"fmt"
	"slices"
	"strings"
)

// Report is an ordered list of human-readable violations. Empty means valid.
type Report []string

// ValidationError carries the full aggregated report. The joined text is
// always delivered as one unit, never truncated to the first violation.
type ValidationError struct {
	Violations Report
}

// Error returns every violation, one per line.
func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "\n")
}

// noExtensionLabel names the empty type tag in violation messages.
const noExtensionLabel = "(no extension)"

// validate runs the fixed compatibility battery. Every check runs
// unconditionally and independently; the report is the union of all
// triggered messages in check order.
func validate(f *FileSet) Report {
	if len(f.paths) == 0 {
		return Report{"no input files specified"}
	}

	var report Report

	report = append(report, checkTypeCoverage(f)...)
	report = append(report, checkMetadataRequirement(f)...)
	report = append(report, checkObservationCompleteness(f)...)
	report = append(report, checkUnsupportedTypes(f)...)
	report = append(report, checkExclusiveFamilies(f)...)
	report = append(report, checkExclusiveSelection(f)...)

	if len(report) > 0 {
		report = append(report, fmt.Sprintf("validation failed for: %s", strings.Join(f.paths, ", ")))
	}

	return report
}

// checkTypeCoverage requires at least one recognized file group.
func checkTypeCoverage(f *FileSet) Report {
	for _, tag := range recognizedTypes {
		if f.HasType(tag) {
			return nil
		}
	}

	names := make([]string, len(recognizedTypes))
	for i, tag := range recognizedTypes {
		names[i] = string(tag)
	}

	return Report{fmt.Sprintf("no supported file types found; supported types are: %s",
		strings.Join(names, ", "))}
}

// checkMetadataRequirement requires a metadata companion whenever raw
// visibility files are present. Reported separately from type coverage.
func checkMetadataRequirement(f *FileSet) Report {
	if f.HasType(TypeFits) && !f.HasType(TypeMetafits) {
		return Report{"fits files require a metafits companion"}
	}

	return nil
}

// checkObservationCompleteness requires a non-empty metafits sub-group for
// every observation that has raw visibility files. Failing observations are
// aggregated into one message covering all of them.
func checkObservationCompleteness(f *FileSet) Report {
	if f.obsGroups == nil {
		return nil
	}

	var missing []string

	for obsid, byType := range f.obsGroups {
		if len(byType[TypeFits]) == 0 {
			continue
		}

		if len(byType[TypeMetafits]) == 0 {
			missing = append(missing, obsid)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)

	return Report{fmt.Sprintf("metafits files are missing for obsids: %s", strings.Join(missing, ", "))}
}

// checkUnsupportedTypes reports every tag present in the groups but absent
// from the recognition set, by name.
func checkUnsupportedTypes(f *FileSet) Report {
	var unsupported []string

	for tag := range f.groups {
		if slices.Contains(recognizedTypes, tag) {
			continue
		}

		name := string(tag)
		if name == "" {
			name = noExtensionLabel
		}

		unsupported = append(unsupported, name)
	}

	if len(unsupported) == 0 {
		return nil
	}

	slices.Sort(unsupported)

	return Report{fmt.Sprintf("unsupported file types found: %s", strings.Join(unsupported, ", "))}
}

// checkExclusiveFamilies reports every mutually exclusive container pair
// that is present together, by name, in table order.
func checkExclusiveFamilies(f *FileSet) Report {
	var report Report

	for _, pair := range exclusiveFamilies {
		if f.HasType(pair[0]) && f.HasType(pair[1]) {
			report = append(report, fmt.Sprintf("cannot use both %s and %s files", pair[0], pair[1]))
		}
	}

	return report
}

// checkExclusiveSelection rejects configurations that populate both the
// antenna include and exclude lists.
func checkExclusiveSelection(f *FileSet) Report {
	if len(f.selection.SelAnts) > 0 && len(f.selection.SkipAnts) > 0 {
		return Report{"cannot specify both antenna include and exclude lists"}
	}

	return nil
}
