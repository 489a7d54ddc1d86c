// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the session's human-readable artifacts: the
// verification report and the implementation plan.
package report

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paperflow/pkg/types"
)

// PassRate returns passed and total fixture counts across all results.
func PassRate(results []types.VerificationResult) (passed, total int) {
	for _, r := range results {
		for _, f := range r.Fixtures {
			total++
			if f.Passed {
				passed++
			}
		}
	}
	return passed, total
}

// Verification renders the verification report as Markdown: an aggregate
// pass rate followed by per-fixture detail grouped by specification.
func Verification(results []types.VerificationResult) string {
	var b strings.Builder
	b.WriteString("# Verification Report\n\n")

	passed, total := PassRate(results)
	rate := 0.0
	if total > 0 {
		rate = float64(passed) / float64(total) * 100
	}
	fmt.Fprintf(&b, "Pass rate: %d/%d (%.1f%%)\n", passed, total, rate)

	for _, r := range results {
		fmt.Fprintf(&b, "\n## %s\n\n", r.SpecificationID)
		if len(r.Fixtures) == 0 {
			b.WriteString("No fixtures were run.\n")
			continue
		}
		for _, f := range r.Fixtures {
			switch {
			case f.Passed:
				fmt.Fprintf(&b, "- [x] %s\n", f.ID)
			case f.Error != "":
				fmt.Fprintf(&b, "- [ ] %s: error: %s\n", f.ID, f.Error)
			default:
				fmt.Fprintf(&b, "- [ ] %s: expected `%s`, got `%s`\n", f.ID, f.Expected, f.Actual)
			}
		}
	}
	return b.String()
}

// ImplementationPlan renders the gap report as an ordered work plan.
// Unimplemented elements come first, then partially implemented ones.
// The plan is produced even when nothing remains to do.
func ImplementationPlan(gaps types.GapReport) string {
	var b strings.Builder
	b.WriteString("# Implementation Plan\n\n")
	fmt.Fprintf(&b, "Coverage: %.1f%% (%d of %d elements fully implemented)\n",
		gaps.Coverage*100, len(gaps.FullyImplemented), gaps.TotalElements)

	item := 0
	writeSection := func(heading string, ids []string, note string) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n", heading)
		for _, id := range ids {
			item++
			fmt.Fprintf(&b, "%d. `%s` %s\n", item, id, note)
		}
	}
	writeSection("Unimplemented", gaps.Unimplemented, "has no corresponding code element.")
	writeSection("Partially Implemented", gaps.PartiallyImplemented, "needs its implementation completed.")

	if item == 0 {
		b.WriteString("\nAll paper elements are fully implemented.\n")
	}
	return b.String()
}
