// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spec

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/paperflow/pkg/types"
)

func fullSpec() *types.ExecutableSpecification {
	return &types.ExecutableSpecification{
		ID:          "spec-quicksort",
		Title:       "QuickSort",
		Description: "Recursive comparison sort.",
		Inputs: []types.SpecParam{
			{Name: "arr", Type: "number[]", Description: "Values to sort.", ExampleValue: "[3,1,2]"},
			{Name: "cmp", Type: "function", Description: "Comparator a|b style.", ExampleValue: "null"},
		},
		Outputs: []types.SpecParam{
			{Name: "sorted", Type: "number[]", Description: "Ascending order.", ExampleValue: "[1,2,3]"},
		},
		Steps: []types.SpecStep{
			{ID: "step-1", Description: "partition", Code: "// partition\npanic(\"not implemented\")", ExpectedResult: "two halves"},
			{ID: "step-2", Description: "recurse", Code: "// recurse"},
		},
		SourceConceptIDs: []string{"algorithm-quicksort", "method-partition-scheme"},
		VerificationFixtures: []types.VerificationFixture{
			{
				ID:             "spec-quicksort-fixture-1",
				Input:          json.RawMessage(`{"arr":[3,1,2]}`),
				ExpectedOutput: json.RawMessage(`[1,2,3]`),
				Description:    "small array",
			},
			{
				ID:             "spec-quicksort-fixture-2",
				Input:          json.RawMessage(`{}`),
				ExpectedOutput: json.RawMessage(`null`),
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	original := fullSpec()
	parsed, err := Parse(Format(original))
	if err != nil {
		t.Fatalf("Parse(Format(spec)): %v", err)
	}
	if !reflect.DeepEqual(original, parsed) {
		t.Errorf("round trip mismatch\n  original: %+v\n  parsed:   %+v", original, parsed)
	}
}

func TestRoundTrip_HeuristicOutput(t *testing.T) {
	g := NewGenerator(nil, types.AIConfig{}, nil)
	original, err := g.Generate(context.Background(), quickSort(), quickSortGraph(), "go")
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := Parse(Format(original))
	if err != nil {
		t.Fatalf("Parse(Format(spec)): %v", err)
	}
	if !reflect.DeepEqual(original, parsed) {
		t.Errorf("round trip mismatch\n  original: %+v\n  parsed:   %+v", original, parsed)
	}
}

func TestRoundTrip_PipeInCell(t *testing.T) {
	s := fullSpec()
	parsed, err := Parse(Format(s))
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Inputs[1].Description != "Comparator a|b style." {
		t.Errorf("pipe-bearing cell = %q", parsed.Inputs[1].Description)
	}
}

func TestRoundTrip_FenceInStepCode(t *testing.T) {
	s := fullSpec()
	s.Steps = []types.SpecStep{
		{ID: "step-1", Description: "emit a fenced block", Code: "print(\"```\")\n```\nprint(\"done\")"},
		{ID: "step-2", Description: "long backtick run", Code: "x = \"`````\""},
		{ID: "step-3", Description: "empty code", Code: ""},
	}

	parsed, err := Parse(Format(s))
	if err != nil {
		t.Fatalf("Parse(Format(spec)): %v", err)
	}
	if !reflect.DeepEqual(s.Steps, parsed.Steps) {
		t.Errorf("steps corrupted\n  original: %+v\n  parsed:   %+v", s.Steps, parsed.Steps)
	}
}

func TestRoundTrip_HeadingInDescription(t *testing.T) {
	s := fullSpec()
	s.Description = "Sort in place.\n## Inputs\n\\## Outputs\nsee above"

	parsed, err := Parse(Format(s))
	if err != nil {
		t.Fatalf("Parse(Format(spec)): %v", err)
	}
	if parsed.Description != s.Description {
		t.Errorf("description = %q, want %q", parsed.Description, s.Description)
	}
	// The embedded heading must not truncate or reorder the real sections.
	if !reflect.DeepEqual(s.Inputs, parsed.Inputs) {
		t.Errorf("inputs corrupted: %+v", parsed.Inputs)
	}
}

func TestFormat_Layout(t *testing.T) {
	text := Format(fullSpec())

	for _, want := range []string{
		"---\nid: spec-quicksort\ntitle: QuickSort\n---",
		"## Inputs",
		"## Outputs",
		"## Implementation Steps",
		"### step-1: partition",
		"Expected result: two halves",
		"## Verification Fixtures",
		"- Input: `{\"arr\":[3,1,2]}`",
		"- Expected output: `[1,2,3]`",
		"## Source Concepts",
		"- algorithm-quicksort",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("formatted spec missing %q", want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "no front matter", text: "# Just Markdown\n"},
		{name: "unterminated front matter", text: "---\nid: x\n"},
		{name: "missing id", text: "---\ntitle: X\n---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.text); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}
