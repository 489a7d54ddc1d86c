// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paperflow/internal/ident"
	"github.com/pdiddy/paperflow/internal/textgen"
	"github.com/pdiddy/paperflow/pkg/types"
)

// validRelationshipTypes is the set of accepted edge types; anything else
// coming back from the generator is coerced to "references".
var validRelationshipTypes = map[types.RelationshipType]bool{
	types.RelUses:       true,
	types.RelImplements: true,
	types.RelExtends:    true,
	types.RelDependsOn:  true,
	types.RelRefines:    true,
	types.RelReferences: true,
	types.RelContains:   true,
	types.RelInherits:   true,
	types.RelAssociates: true,
}

// Identifier turns concepts plus paper content into typed relationships.
// With a nil Generator it runs the co-occurrence heuristic only.
type Identifier struct {
	gen    textgen.Generator
	cfg    types.AIConfig
	logger *zap.Logger
}

// NewIdentifier constructs a relationship identifier. gen may be nil;
// logger may be nil for a no-op logger.
func NewIdentifier(gen textgen.Generator, cfg types.AIConfig, logger *zap.Logger) *Identifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Identifier{gen: gen, cfg: cfg, logger: logger}
}

// Identify returns typed edges between the given concepts. Self-edges are
// always filtered, and the relationship id is a pure function of the
// (source, target) pair so repeated runs union cleanly. A generation
// failure degrades to the co-occurrence heuristic.
func (r *Identifier) Identify(ctx context.Context, concepts []types.PaperConcept, content *types.PaperContent) ([]types.PaperConceptRelationship, error) {
	if r.gen != nil {
		rels, err := r.generateRelationships(ctx, concepts, content)
		if err == nil {
			return rels, nil
		}
		r.logger.Warn("relationship generation failed; using co-occurrence heuristic",
			zap.Error(err))
	}
	return heuristicRelationships(concepts, content), nil
}

// RelationshipID derives the deterministic edge identifier for a
// (source, target) concept pair.
func RelationshipID(sourceID, targetID string) string {
	return "rel-" + ident.ShortHash(sourceID, targetID)
}

// generatedRelationship is one edge as returned by the text generator.
type generatedRelationship struct {
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
}

// generatedRelationshipList is the payload shape requested from the generator.
type generatedRelationshipList struct {
	Relationships []generatedRelationship `json:"relationships"`
}

func (r *Identifier) generateRelationships(ctx context.Context, concepts []types.PaperConcept, content *types.PaperContent) ([]types.PaperConceptRelationship, error) {
	data := relationshipPromptData{Sections: sectionText(content)}
	for _, c := range concepts {
		data.Concepts = append(data.Concepts, promptConcept{Name: c.Name, Type: string(c.Type)})
	}
	prompt, err := renderRelationshipPrompt(data)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := textgen.GenerateWithRetry(ctx, r.gen, prompt, r.cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	var payload generatedRelationshipList
	if err := textgen.DecodeInto(text, &payload); err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(concepts))
	for _, c := range concepts {
		byName[strings.ToLower(c.Name)] = c.ID
	}

	var rels []types.PaperConceptRelationship
	seen := make(map[string]bool)
	for _, gr := range payload.Relationships {
		sourceID, okS := byName[strings.ToLower(strings.TrimSpace(gr.Source))]
		targetID, okT := byName[strings.ToLower(strings.TrimSpace(gr.Target))]
		if !okS || !okT {
			r.logger.Warn("dropping relationship with unresolved endpoint",
				zap.String("source", gr.Source),
				zap.String("target", gr.Target))
			continue
		}
		if sourceID == targetID {
			continue
		}

		rt := types.RelationshipType(gr.Type)
		if !validRelationshipTypes[rt] {
			rt = types.RelReferences
		}

		id := RelationshipID(sourceID, targetID)
		if seen[id] {
			continue
		}
		seen[id] = true

		rels = append(rels, types.PaperConceptRelationship{
			ID:          id,
			SourceID:    sourceID,
			TargetID:    targetID,
			Type:        rt,
			Description: strings.TrimSpace(gr.Description),
			Evidence:    gr.Evidence,
		})
	}
	return rels, nil
}

// heuristicRelationships emits a "uses" edge for every (algorithm, method)
// concept pair whose names co-occur within one section's content.
func heuristicRelationships(concepts []types.PaperConcept, content *types.PaperContent) []types.PaperConceptRelationship {
	var algorithms, methods []types.PaperConcept
	for _, c := range concepts {
		switch c.Type {
		case types.ConceptAlgorithm:
			algorithms = append(algorithms, c)
		case types.ConceptMethod:
			methods = append(methods, c)
		}
	}

	var rels []types.PaperConceptRelationship
	seen := make(map[string]bool)
	for _, algo := range algorithms {
		for _, method := range methods {
			if algo.ID == method.ID {
				continue
			}
			sec := coOccurringSection(content, algo.Name, method.Name)
			if sec == nil {
				continue
			}
			id := RelationshipID(algo.ID, method.ID)
			if seen[id] {
				continue
			}
			seen[id] = true

			rels = append(rels, types.PaperConceptRelationship{
				ID:          id,
				SourceID:    algo.ID,
				TargetID:    method.ID,
				Type:        types.RelUses,
				Description: fmt.Sprintf("%s and %s appear together in section %q", algo.Name, method.Name, sec.Title),
				Evidence:    []string{sec.ID},
			})
		}
	}
	return rels
}

// coOccurringSection returns the first section whose content mentions both
// names, or nil.
func coOccurringSection(content *types.PaperContent, a, b string) *types.PaperSection {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for i := range content.Sections {
		body := strings.ToLower(content.Sections[i].Content)
		if strings.Contains(body, la) && strings.Contains(body, lb) {
			return &content.Sections[i]
		}
	}
	return nil
}

// sectionText concatenates all section bodies for the relationship prompt.
func sectionText(content *types.PaperContent) string {
	var b strings.Builder
	for _, sec := range content.Sections {
		b.WriteString("## ")
		b.WriteString(sec.Title)
		b.WriteString("\n")
		b.WriteString(sec.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
