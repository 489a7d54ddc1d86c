// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trace

import "github.com/pdiddy/paperflow/pkg/types"

// AnalyzeGaps partitions paper elements by their strongest trace link.
// An element with any implements link is fully implemented; one with only
// weaker links is partially implemented; one with no links at all is
// unimplemented. Each element lands in exactly one bucket, preserving
// input order.
func AnalyzeGaps(elements []Element, links []types.TraceLink) types.GapReport {
	strongest := make(map[string]types.TraceLinkType)
	for _, link := range links {
		current, ok := strongest[link.PaperElementID]
		if !ok || rank(link.Type) > rank(current) {
			strongest[link.PaperElementID] = link.Type
		}
	}

	report := types.GapReport{
		FullyImplemented:     []string{},
		PartiallyImplemented: []string{},
		Unimplemented:        []string{},
		TotalElements:        len(elements),
	}
	for _, el := range elements {
		switch strongest[el.ID] {
		case types.TraceImplements:
			report.FullyImplemented = append(report.FullyImplemented, el.ID)
		case types.TracePartiallyImplements, types.TraceReferences:
			report.PartiallyImplemented = append(report.PartiallyImplemented, el.ID)
		default:
			report.Unimplemented = append(report.Unimplemented, el.ID)
		}
	}

	if report.TotalElements > 0 {
		report.Coverage = float64(len(report.FullyImplemented)) / float64(report.TotalElements)
	}
	return report
}

func rank(t types.TraceLinkType) int {
	switch t {
	case types.TraceImplements:
		return 3
	case types.TracePartiallyImplements:
		return 2
	case types.TraceReferences:
		return 1
	}
	return 0
}
