// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pdiddy/paperflow/pkg/types"
)

// mockGenerator returns a fixed response, or an error when set.
type mockGenerator struct {
	response string
	err      error
	calls    int
}

func (m *mockGenerator) Generate(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func testPaper() *types.PaperContent {
	return &types.PaperContent{
		Info: types.PaperInfo{
			Title:    "Sorting Reconsidered",
			Abstract: "We revisit comparison sorts.",
		},
		Sections: []types.PaperSection{
			{ID: "sec-1", Title: "Introduction", Content: "QuickSort uses a Partition Scheme to divide work. The Partition Scheme splits around a pivot."},
			{ID: "sec-2", Title: "Analysis", Content: "Average Case Analysis shows O(n log n) behaviour."},
		},
		Algorithms: []types.PaperAlgorithm{
			{ID: "algo-1", Name: "QuickSort", Description: "Recursive comparison sort.", Pseudocode: "partition\nrecurse", Inputs: []string{"arr"}, Outputs: []string{"sorted"}},
			{ID: "algo-2", Name: "MergeSort", Description: "Divide and merge.", Pseudocode: "split\nmerge"},
		},
	}
}

func TestExtract_AlgorithmConcepts(t *testing.T) {
	ex := NewExtractor(nil, types.AIConfig{}, nil)
	concepts, err := ex.Extract(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var algoConcepts []types.PaperConcept
	for _, c := range concepts {
		if c.Type == types.ConceptAlgorithm {
			algoConcepts = append(algoConcepts, c)
		}
	}
	if len(algoConcepts) != 2 {
		t.Fatalf("got %d algorithm concepts, want 2", len(algoConcepts))
	}

	// Source order is preserved and provenance points at the algorithm id.
	if algoConcepts[0].Name != "QuickSort" || algoConcepts[1].Name != "MergeSort" {
		t.Errorf("order = %s, %s; want QuickSort, MergeSort", algoConcepts[0].Name, algoConcepts[1].Name)
	}
	if !reflect.DeepEqual(algoConcepts[0].SourceElements, []string{"algo-1"}) {
		t.Errorf("sourceElements = %v, want [algo-1]", algoConcepts[0].SourceElements)
	}
	if algoConcepts[0].ID != "algorithm-quicksort" {
		t.Errorf("id = %q, want algorithm-quicksort", algoConcepts[0].ID)
	}
}

func TestExtract_HeuristicPath(t *testing.T) {
	ex := NewExtractor(nil, types.AIConfig{}, nil)
	concepts, err := ex.Extract(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	byName := make(map[string]types.PaperConcept)
	for _, c := range concepts {
		byName[c.Name] = c
	}

	// Multi-word capitalized phrases longer than 10 chars, minus algorithm names.
	if _, ok := byName["Partition Scheme"]; !ok {
		t.Error("missing heuristic concept \"Partition Scheme\"")
	}
	if _, ok := byName["Average Case Analysis"]; !ok {
		t.Error("missing heuristic concept \"Average Case Analysis\"")
	}
	if c := byName["Partition Scheme"]; c.Type != types.ConceptGeneral {
		t.Errorf("heuristic concept type = %q, want %q", c.Type, types.ConceptGeneral)
	}

	// "Partition Scheme" appears twice in sec-1 but is emitted once.
	count := 0
	for _, c := range concepts {
		if c.Name == "Partition Scheme" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate phrase emitted %d times, want 1", count)
	}
}

func TestExtract_HeuristicDeterminism(t *testing.T) {
	ex := NewExtractor(nil, types.AIConfig{}, nil)

	first, err := ex.Extract(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, err := ex.Extract(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("heuristic extraction is not reproducible for fixed input")
	}
}

func TestExtract_GeneratorPath(t *testing.T) {
	gen := &mockGenerator{response: `Here are the concepts:
{"concepts": [
  {"name": "Pivot Selection", "description": "Choosing the partition element.", "type": "method"},
  {"name": "QuickSort", "description": "duplicate of an algorithm concept", "type": "method"},
  {"name": "Weird Thing", "description": "unknown type", "type": "widget"}
]}`}

	ex := NewExtractor(gen, types.AIConfig{MaxRetries: 1}, nil)
	concepts, err := ex.Extract(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	byName := make(map[string]types.PaperConcept)
	for _, c := range concepts {
		byName[c.Name] = c
	}

	if c, ok := byName["Pivot Selection"]; !ok || c.Type != types.ConceptMethod {
		t.Errorf("Pivot Selection = %+v, want method concept", c)
	}
	if c := byName["Weird Thing"]; c.Type != types.ConceptGeneral {
		t.Errorf("invalid type coerced to %q, want %q", c.Type, types.ConceptGeneral)
	}

	// The duplicate QuickSort stays an algorithm concept, not a second entry.
	count := 0
	for _, c := range concepts {
		if c.Name == "QuickSort" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("QuickSort appears %d times, want 1", count)
	}
}

func TestExtract_GeneratorUnparsableResponse(t *testing.T) {
	gen := &mockGenerator{response: "I could not find any concepts, sorry."}
	ex := NewExtractor(gen, types.AIConfig{MaxRetries: 1}, nil)

	concepts, err := ex.Extract(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("unparsable response must not be fatal: %v", err)
	}

	// Algorithm concepts alone constitute the result.
	if len(concepts) != 2 {
		t.Errorf("got %d concepts, want the 2 algorithm concepts", len(concepts))
	}
	for _, c := range concepts {
		if c.Type != types.ConceptAlgorithm {
			t.Errorf("unexpected non-algorithm concept %q after generation failure", c.Name)
		}
	}
}

func TestExtract_GeneratorError(t *testing.T) {
	// Cancel the context so the retry loop exits without sleeping.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &mockGenerator{err: fmt.Errorf("backend unavailable")}
	ex := NewExtractor(gen, types.AIConfig{MaxRetries: 3}, nil)

	concepts, err := ex.Extract(ctx, testPaper())
	if err != nil {
		t.Fatalf("generator error must not be fatal: %v", err)
	}
	if len(concepts) != 2 {
		t.Errorf("got %d concepts, want the 2 algorithm concepts", len(concepts))
	}
}

func TestBuildSummary_Bounded(t *testing.T) {
	content := testPaper()
	long := make([]byte, 10000)
	for i := range long {
		long[i] = 'x'
	}
	content.Sections = append(content.Sections, types.PaperSection{ID: "sec-3", Title: "Padding", Content: string(long)})

	summary := buildSummary(content, summaryBudget)
	if len(summary) > summaryBudget {
		t.Errorf("summary length %d exceeds budget %d", len(summary), summaryBudget)
	}
}

func TestBuildSummary_TruncatesOnRuneBoundary(t *testing.T) {
	content := testPaper()
	content.Sections = []types.PaperSection{
		{ID: "sec-1", Title: "Greek", Content: strings.Repeat("αβγ", 4000)},
	}

	// Sweep budgets around the default so some cut points land inside a
	// multi-byte rune.
	for budget := summaryBudget; budget < summaryBudget+4; budget++ {
		summary := buildSummary(content, budget)
		if len(summary) > budget {
			t.Fatalf("summary length %d exceeds budget %d", len(summary), budget)
		}
		if !utf8.ValidString(summary) {
			t.Errorf("budget %d produced invalid UTF-8", budget)
		}
	}
}

func TestConceptID_Collisions(t *testing.T) {
	seen := newIDSet()
	a := seen.claim("concept-x")
	b := seen.claim("concept-x")
	c := seen.claim("concept-x")

	if a != "concept-x" || b != "concept-x-2" || c != "concept-x-3" {
		t.Errorf("collision suffixes = %q, %q, %q", a, b, c)
	}
}
