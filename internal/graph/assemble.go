// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph assembles and annotates the paper knowledge graph.
// Assembly happens once per session; the annotation pass is pure and may
// be re-run on a persisted graph without changing its structure.
package graph

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Assembler merges concepts and relationships into a validated graph.
type Assembler struct {
	logger *zap.Logger
	mapper OntologyMapper
}

// NewAssembler constructs an assembler. logger may be nil for a no-op
// logger; mapper may be nil to use the stub ontology mapper.
func NewAssembler(logger *zap.Logger, mapper OntologyMapper) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mapper == nil {
		mapper = StubMapper{}
	}
	return &Assembler{logger: logger, mapper: mapper}
}

// Assemble builds a knowledge graph from concepts and relationships.
// Relationships with a dangling or self-referential endpoint are dropped
// and the drop count is logged. The domain/category annotation pass runs
// unconditionally.
func (a *Assembler) Assemble(concepts []types.PaperConcept, relationships []types.PaperConceptRelationship) *types.PaperKnowledgeGraph {
	known := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		known[c.ID] = true
	}

	kept := make([]types.PaperConceptRelationship, 0, len(relationships))
	dropped := 0
	for _, rel := range relationships {
		if rel.SourceID == rel.TargetID || !known[rel.SourceID] || !known[rel.TargetID] {
			dropped++
			continue
		}
		kept = append(kept, rel)
	}
	if dropped > 0 {
		a.logger.Info("dropped relationships with invalid endpoints",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(kept)))
	}

	g := &types.PaperKnowledgeGraph{
		Concepts:      append([]types.PaperConcept(nil), concepts...),
		Relationships: kept,
	}
	Annotate(g)
	return g
}

// Enhance re-runs the pure annotation passes on an existing graph,
// including ontology mapping. It never alters graph structure and is
// idempotent.
func (a *Assembler) Enhance(g *types.PaperKnowledgeGraph) {
	Annotate(g)
	for i := range g.Concepts {
		if g.Concepts[i].OntologyMapping != nil {
			continue
		}
		mapping, err := a.mapper.MapConcept(&g.Concepts[i])
		if err != nil {
			a.logger.Warn("ontology mapping failed",
				zap.String("concept", g.Concepts[i].ID),
				zap.Error(err))
			continue
		}
		g.Concepts[i].OntologyMapping = mapping
	}
}

// domainKeywords classifies concepts into knowledge domains by keyword.
// Order matters: the first matching domain wins.
var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{"MachineLearning", []string{"neural", "learning", "network", "gradient", "training", "embedding"}},
	{"DataStructures", []string{"tree", "graph", "hash", "heap", "queue", "stack", "list"}},
	{"Optimization", []string{"optimiz", "minimiz", "maximiz", "convergence", "objective"}},
	{"Statistics", []string{"probabil", "statistic", "bayes", "distribution", "sampling"}},
}

// categoryKeywords refines a concept's category by type plus keyword.
var categoryKeywords = []struct {
	conceptType types.ConceptType
	keyword     string
	category    string
}{
	{types.ConceptAlgorithm, "sort", "SortingAlgorithm"},
	{types.ConceptAlgorithm, "search", "SearchAlgorithm"},
	{types.ConceptAlgorithm, "graph", "GraphAlgorithm"},
	{types.ConceptAlgorithm, "", "GeneralAlgorithm"},
	{types.ConceptMethod, "learning", "LearningMethod"},
	{types.ConceptMethod, "", "GeneralMethod"},
	{types.ConceptDataStructure, "tree", "TreeStructure"},
	{types.ConceptDataStructure, "", "GeneralStructure"},
}

// Annotate runs the keyword-table domain and category classification over
// every concept. It is pure, never fails, and calls no external services.
func Annotate(g *types.PaperKnowledgeGraph) {
	for i := range g.Concepts {
		c := &g.Concepts[i]
		text := strings.ToLower(c.Name + " " + c.Description)

		for _, d := range domainKeywords {
			if containsAny(text, d.keywords) {
				c.Domain = d.domain
				break
			}
		}

		for _, ck := range categoryKeywords {
			if ck.conceptType != c.Type {
				continue
			}
			if ck.keyword == "" || strings.Contains(text, ck.keyword) {
				c.Category = ck.category
				break
			}
		}
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
