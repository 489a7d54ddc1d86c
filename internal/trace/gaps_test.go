// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trace

import (
	"reflect"
	"testing"

	"github.com/pdiddy/paperflow/pkg/types"
)

func link(paperID string, t types.TraceLinkType) types.TraceLink {
	return types.TraceLink{PaperElementID: paperID, Type: t}
}

func TestAnalyzeGaps_Partition(t *testing.T) {
	elements := []Element{
		{ID: "algo-1", Name: "QuickSort"},
		{ID: "algo-2", Name: "MergeSort"},
		{ID: "eq-1", Name: "Pivot Invariant"},
		{ID: "eq-2", Name: "Recurrence"},
	}
	links := []types.TraceLink{
		link("algo-1", types.TraceImplements),
		link("algo-1", types.TracePartiallyImplements), // weaker link does not demote
		link("algo-2", types.TracePartiallyImplements),
		link("eq-1", types.TraceReferences),
	}

	report := AnalyzeGaps(elements, links)

	if !reflect.DeepEqual(report.FullyImplemented, []string{"algo-1"}) {
		t.Errorf("fully = %v", report.FullyImplemented)
	}
	if !reflect.DeepEqual(report.PartiallyImplemented, []string{"algo-2", "eq-1"}) {
		t.Errorf("partial = %v", report.PartiallyImplemented)
	}
	if !reflect.DeepEqual(report.Unimplemented, []string{"eq-2"}) {
		t.Errorf("unimplemented = %v", report.Unimplemented)
	}
	if report.TotalElements != 4 {
		t.Errorf("total = %d", report.TotalElements)
	}
	if report.Coverage != 0.25 {
		t.Errorf("coverage = %v, want 0.25", report.Coverage)
	}
}

func TestAnalyzeGaps_EveryElementInExactlyOneBucket(t *testing.T) {
	elements := paperElements()
	links := []types.TraceLink{
		link("algo-1", types.TraceImplements),
		link("eq-1", types.TraceReferences),
	}

	report := AnalyzeGaps(elements, links)

	total := len(report.FullyImplemented) + len(report.PartiallyImplemented) + len(report.Unimplemented)
	if total != len(elements) {
		t.Errorf("bucket sizes sum to %d, want %d", total, len(elements))
	}
}

func TestAnalyzeGaps_NoElements(t *testing.T) {
	report := AnalyzeGaps(nil, nil)
	if report.Coverage != 0 {
		t.Errorf("coverage = %v, want 0 for empty input", report.Coverage)
	}
	if report.TotalElements != 0 {
		t.Errorf("total = %d", report.TotalElements)
	}
	if report.FullyImplemented == nil || report.Unimplemented == nil {
		t.Error("buckets must be empty slices, not nil")
	}
}

func TestAnalyzeGaps_LinkForUnknownElementIgnored(t *testing.T) {
	elements := []Element{{ID: "algo-1", Name: "QuickSort"}}
	links := []types.TraceLink{link("algo-ghost", types.TraceImplements)}

	report := AnalyzeGaps(elements, links)
	if len(report.Unimplemented) != 1 || report.Unimplemented[0] != "algo-1" {
		t.Errorf("unimplemented = %v", report.Unimplemented)
	}
	if report.TotalElements != 1 {
		t.Errorf("total = %d", report.TotalElements)
	}
}
