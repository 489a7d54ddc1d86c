// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConceptType categorizes a concept extracted from a paper.
type ConceptType string

const (
	ConceptAlgorithm     ConceptType = "algorithm"
	ConceptMethod        ConceptType = "method"
	ConceptDataStructure ConceptType = "dataStructure"
	ConceptParameter     ConceptType = "parameter"
	ConceptGeneral       ConceptType = "concept"
)

// OntologyMapping links a concept to an external ontology entry.
type OntologyMapping struct {
	// Mapping is the ontology URI for the concept.
	Mapping string `json:"mapping" yaml:"mapping"`

	// Confidence is a float between 0.0 and 1.0 for the mapping quality.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// RelatedConcepts names neighbouring ontology entries.
	RelatedConcepts []string `json:"relatedConcepts" yaml:"related_concepts"`
}

// PaperConcept is a single concept identified in paper content.
type PaperConcept struct {
	// ID is a stable identifier, deterministic for a given type and name.
	ID string `json:"id" yaml:"id"`

	// Name is the concept name as it appears in the paper.
	Name string `json:"name" yaml:"name"`

	// Description summarizes the concept.
	Description string `json:"description" yaml:"description"`

	// Type categorizes the concept.
	Type ConceptType `json:"type" yaml:"type"`

	// SourceElements lists PaperContent element IDs this concept was derived from.
	SourceElements []string `json:"sourceElements" yaml:"source_elements"`

	// Domain is the annotated knowledge domain (e.g. "MachineLearning").
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Category refines the domain by concept type (e.g. "SortingAlgorithm").
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// OntologyMapping is the optional external ontology annotation.
	OntologyMapping *OntologyMapping `json:"ontologyMapping,omitempty" yaml:"ontology_mapping,omitempty"`
}

// RelationshipType categorizes a directed edge between two concepts.
type RelationshipType string

const (
	RelUses       RelationshipType = "uses"
	RelImplements RelationshipType = "implements"
	RelExtends    RelationshipType = "extends"
	RelDependsOn  RelationshipType = "dependsOn"
	RelRefines    RelationshipType = "refines"
	RelReferences RelationshipType = "references"
	RelContains   RelationshipType = "contains"
	RelInherits   RelationshipType = "inherits"
	RelAssociates RelationshipType = "associates"
)

// PaperConceptRelationship is a typed, directed edge between two concepts.
// SourceID and TargetID must differ and both must exist among the concepts
// of the graph the relationship belongs to.
type PaperConceptRelationship struct {
	// ID is deterministic for a given (SourceID, TargetID) pair.
	ID string `json:"id" yaml:"id"`

	SourceID string           `json:"sourceId" yaml:"source_id"`
	TargetID string           `json:"targetId" yaml:"target_id"`
	Type     RelationshipType `json:"type" yaml:"type"`

	// Description explains the relationship.
	Description string `json:"description" yaml:"description"`

	// Evidence quotes the paper text supporting the relationship.
	Evidence []string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// PaperKnowledgeGraph is the assembled concept graph for one paper.
// No relationship may reference a concept absent from Concepts; the
// assembler drops edges that would violate this.
type PaperKnowledgeGraph struct {
	Concepts      []PaperConcept             `json:"concepts" yaml:"concepts"`
	Relationships []PaperConceptRelationship `json:"relationships" yaml:"relationships"`
}

// Concept returns the concept with the given ID, or nil.
func (g *PaperKnowledgeGraph) Concept(id string) *PaperConcept {
	for i := range g.Concepts {
		if g.Concepts[i].ID == id {
			return &g.Concepts[i]
		}
	}
	return nil
}
