// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"github.com/pdiddy/paperflow/internal/ident"
	"github.com/pdiddy/paperflow/pkg/types"
)

// OntologyMapper links concepts to an external ontology. It is an
// extension point: the pipeline ships only the stub below, pending a real
// ontology-service collaborator.
type OntologyMapper interface {
	MapConcept(c *types.PaperConcept) (*types.OntologyMapping, error)
}

// stubConfidence is the fixed confidence reported by the stub mapper.
const stubConfidence = 0.5

// StubMapper returns a synthetic URI for every concept. It exists so the
// annotation pipeline and its consumers have a complete shape to work
// with; replace it with a real ontology client when one is available.
type StubMapper struct{}

// MapConcept returns a deterministic synthetic mapping.
func (StubMapper) MapConcept(c *types.PaperConcept) (*types.OntologyMapping, error) {
	return &types.OntologyMapping{
		Mapping:         "urn:paperflow:concept:" + ident.Slug(c.Name),
		Confidence:      stubConfidence,
		RelatedConcepts: []string{},
	}, nil
}
