// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package concepts identifies paper concepts and the typed relationships
// between them. Both stages dispatch internally to a generation-backed or
// a heuristic implementation depending on whether a text generator was
// injected at construction time.
package concepts

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/paperflow/internal/ident"
	"github.com/pdiddy/paperflow/internal/textgen"
	"github.com/pdiddy/paperflow/pkg/types"
)

// summaryBudget bounds the character count of the paper summary included
// in the concept-extraction prompt so prompt size stays bounded.
const summaryBudget = 6000

// defaultTimeout bounds a single generation call when the config does not
// specify one.
const defaultTimeout = 60 * time.Second

// validConceptTypes is the set of accepted ConceptType values; anything
// else coming back from the generator is coerced to the generic type.
var validConceptTypes = map[types.ConceptType]bool{
	types.ConceptAlgorithm:     true,
	types.ConceptMethod:        true,
	types.ConceptDataStructure: true,
	types.ConceptParameter:     true,
	types.ConceptGeneral:       true,
}

// Extractor turns paper content into concepts. With a nil Generator it
// runs the deterministic heuristic path only.
type Extractor struct {
	gen    textgen.Generator
	cfg    types.AIConfig
	logger *zap.Logger
}

// NewExtractor constructs a concept extractor. gen may be nil; logger may
// be nil for a no-op logger.
func NewExtractor(gen textgen.Generator, cfg types.AIConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{gen: gen, cfg: cfg, logger: logger}
}

// Extract returns the paper's concepts in stable order: one concept per
// algorithm in source order, then additional concepts in discovery order.
// Generation failures are logged and degrade to the algorithm concepts
// alone; they are never fatal.
func (e *Extractor) Extract(ctx context.Context, content *types.PaperContent) ([]types.PaperConcept, error) {
	seen := newIDSet()
	concepts := algorithmConcepts(content, seen)

	covered := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		covered[strings.ToLower(c.Name)] = true
	}

	if e.gen != nil {
		extras, err := e.generateConcepts(ctx, content, covered, seen)
		if err != nil {
			e.logger.Warn("concept generation failed; keeping algorithm concepts only",
				zap.Error(err))
			return concepts, nil
		}
		return append(concepts, extras...), nil
	}

	return append(concepts, heuristicConcepts(content, covered, seen)...), nil
}

// algorithmConcepts emits one algorithm-typed concept per paper algorithm,
// preserving source order.
func algorithmConcepts(content *types.PaperContent, seen *idSet) []types.PaperConcept {
	concepts := make([]types.PaperConcept, 0, len(content.Algorithms))
	for _, algo := range content.Algorithms {
		concepts = append(concepts, types.PaperConcept{
			ID:             seen.claim(conceptID(types.ConceptAlgorithm, algo.Name)),
			Name:           algo.Name,
			Description:    algo.Description,
			Type:           types.ConceptAlgorithm,
			SourceElements: []string{algo.ID},
		})
	}
	return concepts
}

// generatedConcept is one concept as returned by the text generator.
type generatedConcept struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// generatedConceptList is the payload shape requested from the generator.
type generatedConceptList struct {
	Concepts []generatedConcept `json:"concepts"`
}

func (e *Extractor) generateConcepts(ctx context.Context, content *types.PaperContent, covered map[string]bool, seen *idSet) ([]types.PaperConcept, error) {
	prompt, err := renderConceptPrompt(buildSummary(content, summaryBudget))
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	timeout := e.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := textgen.GenerateWithRetry(ctx, e.gen, prompt, e.cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	var payload generatedConceptList
	if err := textgen.DecodeInto(text, &payload); err != nil {
		return nil, err
	}

	var extras []types.PaperConcept
	for _, gc := range payload.Concepts {
		name := strings.TrimSpace(gc.Name)
		if name == "" || covered[strings.ToLower(name)] {
			continue
		}
		covered[strings.ToLower(name)] = true

		ct := types.ConceptType(gc.Type)
		if !validConceptTypes[ct] || ct == types.ConceptAlgorithm {
			ct = types.ConceptGeneral
		}

		extras = append(extras, types.PaperConcept{
			ID:          seen.claim(conceptID(ct, name)),
			Name:        name,
			Description: strings.TrimSpace(gc.Description),
			Type:        ct,
		})
	}
	return extras, nil
}

// phrasePattern matches capitalized multi-word phrases such as
// "Stochastic Gradient Descent".
var phrasePattern = regexp.MustCompile(`[A-Z][A-Za-z]*(?: [A-Z][A-Za-z]*)+`)

// heuristicConcepts scans section content for capitalized multi-word
// phrases longer than ten characters. The output is byte-for-byte
// reproducible for fixed input.
func heuristicConcepts(content *types.PaperContent, covered map[string]bool, seen *idSet) []types.PaperConcept {
	var extras []types.PaperConcept
	for _, sec := range content.Sections {
		for _, phrase := range phrasePattern.FindAllString(sec.Content, -1) {
			if len(phrase) <= 10 || covered[strings.ToLower(phrase)] {
				continue
			}
			covered[strings.ToLower(phrase)] = true

			extras = append(extras, types.PaperConcept{
				ID:             seen.claim(conceptID(types.ConceptGeneral, phrase)),
				Name:           phrase,
				Description:    fmt.Sprintf("Mentioned in section %q", sec.Title),
				Type:           types.ConceptGeneral,
				SourceElements: []string{sec.ID},
			})
		}
	}
	return extras
}

// conceptID derives a deterministic identifier from concept type and name.
func conceptID(t types.ConceptType, name string) string {
	slug := ident.Slug(name)
	if slug == "" {
		slug = ident.ShortHash(name)
	}
	return ident.Slug(string(t)) + "-" + slug
}

// idSet hands out unique ids, suffixing duplicates with a counter so ids
// stay deterministic for a fixed input ordering.
type idSet struct {
	used map[string]int
}

func newIDSet() *idSet {
	return &idSet{used: make(map[string]int)}
}

func (s *idSet) claim(id string) string {
	n := s.used[id]
	s.used[id] = n + 1
	if n == 0 {
		return id
	}
	return fmt.Sprintf("%s-%d", id, n+1)
}

// buildSummary assembles title, abstract, and section text up to the
// character budget.
func buildSummary(content *types.PaperContent, budget int) string {
	var b strings.Builder
	b.WriteString(content.Info.Title)
	b.WriteString("\n\n")
	b.WriteString(content.Info.Abstract)
	for _, sec := range content.Sections {
		if b.Len() >= budget {
			break
		}
		b.WriteString("\n\n## ")
		b.WriteString(sec.Title)
		b.WriteString("\n")
		b.WriteString(sec.Content)
	}
	summary := b.String()
	if len(summary) > budget {
		// Back up to a rune boundary so the cut never produces invalid UTF-8.
		cut := budget
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut]
	}
	return summary
}
