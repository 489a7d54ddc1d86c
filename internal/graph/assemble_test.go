// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"reflect"
	"testing"

	"github.com/pdiddy/paperflow/pkg/types"
)

func sampleConcepts() []types.PaperConcept {
	return []types.PaperConcept{
		{ID: "algorithm-quicksort", Name: "QuickSort", Description: "Recursive comparison sort.", Type: types.ConceptAlgorithm},
		{ID: "method-gradient-descent", Name: "Gradient Descent", Description: "Iterative learning method.", Type: types.ConceptMethod},
		{ID: "datastructure-b-tree", Name: "B-Tree", Description: "Balanced tree structure.", Type: types.ConceptDataStructure},
	}
}

func TestAssemble_DropsDanglingEdges(t *testing.T) {
	rels := []types.PaperConceptRelationship{
		{ID: "rel-1", SourceID: "algorithm-quicksort", TargetID: "method-gradient-descent", Type: types.RelUses},
		{ID: "rel-2", SourceID: "algorithm-quicksort", TargetID: "concept-missing", Type: types.RelUses},
		{ID: "rel-3", SourceID: "concept-missing", TargetID: "method-gradient-descent", Type: types.RelUses},
		{ID: "rel-4", SourceID: "method-gradient-descent", TargetID: "method-gradient-descent", Type: types.RelUses},
	}

	g := NewAssembler(nil, nil).Assemble(sampleConcepts(), rels)

	if len(g.Relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(g.Relationships))
	}
	if g.Relationships[0].ID != "rel-1" {
		t.Errorf("kept %q, want rel-1", g.Relationships[0].ID)
	}
	if len(g.Concepts) != 3 {
		t.Errorf("concepts = %d, want 3", len(g.Concepts))
	}
}

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name         string
		concept      types.PaperConcept
		wantDomain   string
		wantCategory string
	}{
		{
			name:         "sorting algorithm",
			concept:      types.PaperConcept{Name: "QuickSort", Description: "Recursive comparison sort.", Type: types.ConceptAlgorithm},
			wantDomain:   "",
			wantCategory: "SortingAlgorithm",
		},
		{
			name:         "learning method",
			concept:      types.PaperConcept{Name: "Gradient Descent", Description: "Iterative learning method.", Type: types.ConceptMethod},
			wantDomain:   "MachineLearning",
			wantCategory: "LearningMethod",
		},
		{
			name:         "tree structure",
			concept:      types.PaperConcept{Name: "B-Tree", Description: "Balanced tree structure.", Type: types.ConceptDataStructure},
			wantDomain:   "DataStructures",
			wantCategory: "TreeStructure",
		},
		{
			name:         "neural network",
			concept:      types.PaperConcept{Name: "Transformer", Description: "A neural network architecture.", Type: types.ConceptGeneral},
			wantDomain:   "MachineLearning",
			wantCategory: "",
		},
		{
			name:         "unclassified",
			concept:      types.PaperConcept{Name: "Lemma 3", Description: "An auxiliary claim.", Type: types.ConceptGeneral},
			wantDomain:   "",
			wantCategory: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &types.PaperKnowledgeGraph{Concepts: []types.PaperConcept{tt.concept}}
			Annotate(g)
			if got := g.Concepts[0].Domain; got != tt.wantDomain {
				t.Errorf("domain = %q, want %q", got, tt.wantDomain)
			}
			if got := g.Concepts[0].Category; got != tt.wantCategory {
				t.Errorf("category = %q, want %q", got, tt.wantCategory)
			}
		})
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	g := NewAssembler(nil, nil).Assemble(sampleConcepts(), nil)

	before := make([]types.PaperConcept, len(g.Concepts))
	copy(before, g.Concepts)

	Annotate(g)

	if !reflect.DeepEqual(before, g.Concepts) {
		t.Error("second annotation pass changed concepts")
	}
}

func TestEnhance_OntologyStub(t *testing.T) {
	a := NewAssembler(nil, nil)
	g := a.Assemble(sampleConcepts(), nil)

	a.Enhance(g)

	for _, c := range g.Concepts {
		if c.OntologyMapping == nil {
			t.Fatalf("concept %s has no ontology mapping", c.ID)
		}
		if c.OntologyMapping.Confidence != stubConfidence {
			t.Errorf("confidence = %v, want %v", c.OntologyMapping.Confidence, stubConfidence)
		}
		if c.OntologyMapping.Mapping == "" {
			t.Errorf("concept %s has empty mapping URI", c.ID)
		}
	}

	// Enhancing again must not rewrite existing mappings or structure.
	first := g.Concepts[0].OntologyMapping
	a.Enhance(g)
	if g.Concepts[0].OntologyMapping != first {
		t.Error("re-enhancement replaced an existing mapping")
	}
}
