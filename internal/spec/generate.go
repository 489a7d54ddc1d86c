// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package spec turns algorithms and complex concepts into executable
// specifications: inputs, outputs, implementation steps, and verification
// fixtures. Every specification carries at least one fixture regardless of
// how it was produced.
package spec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paperflow/internal/ident"
	"github.com/pdiddy/paperflow/internal/textgen"
	"github.com/pdiddy/paperflow/pkg/types"
)

// defaultTimeout bounds a single generation call when the config does not
// specify one.
const defaultTimeout = 60 * time.Second

// skeletonStyle selects the comment and stub shape of placeholder code.
// The target-language tag picks a style only; it is never interpreted
// semantically.
type skeletonStyle struct {
	comment string
	stub    string
}

// skeletonStyles maps known language tags to placeholder styles. Unknown
// tags fall back to a plain pseudocode style.
var skeletonStyles = map[string]skeletonStyle{
	"go":         {comment: "// ", stub: `panic("not implemented")`},
	"python":     {comment: "# ", stub: "raise NotImplementedError"},
	"typescript": {comment: "// ", stub: `throw new Error("not implemented")`},
}

var defaultSkeleton = skeletonStyle{comment: "# "}

// Generator produces executable specifications. With a nil text generator
// it runs the deterministic heuristic path only.
type Generator struct {
	gen    textgen.Generator
	cfg    types.AIConfig
	logger *zap.Logger
}

// NewGenerator constructs a specification generator. gen may be nil;
// logger may be nil for a no-op logger.
func NewGenerator(gen textgen.Generator, cfg types.AIConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{gen: gen, cfg: cfg, logger: logger}
}

// Generate builds the specification for one algorithm. A generation or
// parse failure falls back to the heuristic generator; it never
// propagates.
func (g *Generator) Generate(ctx context.Context, algo types.PaperAlgorithm, kg *types.PaperKnowledgeGraph, language string) (*types.ExecutableSpecification, error) {
	if g.gen != nil {
		s, err := g.generateSpec(ctx, algo, kg, language)
		if err == nil {
			return s, nil
		}
		g.logger.Warn("specification generation failed; using heuristic generator",
			zap.String("algorithm", algo.ID),
			zap.Error(err))
	}
	return heuristicSpec(algo, kg, language), nil
}

// SpecID derives the deterministic specification identifier for an algorithm.
func SpecID(algo types.PaperAlgorithm) string {
	slug := ident.Slug(algo.Name)
	if slug == "" {
		slug = ident.Slug(algo.ID)
	}
	return "spec-" + slug
}

// heuristicSpec builds a specification without a text generator: positional
// parameter names where the algorithm leaves them unnamed, one step per
// non-empty pseudocode line, and the baseline verification fixture.
func heuristicSpec(algo types.PaperAlgorithm, kg *types.PaperKnowledgeGraph, language string) *types.ExecutableSpecification {
	id := SpecID(algo)

	s := &types.ExecutableSpecification{
		ID:               id,
		Title:            algo.Name,
		Description:      strings.TrimSpace(algo.Description),
		Inputs:           heuristicParams(algo.Inputs, "input", "Input parameter"),
		Outputs:          heuristicParams(algo.Outputs, "output", "Output value"),
		SourceConceptIDs: sourceConceptIDs(algo, kg),
	}

	style, ok := skeletonStyles[language]
	if !ok {
		style = defaultSkeleton
	}

	n := 0
	for _, line := range strings.Split(algo.Pseudocode, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n++
		s.Steps = append(s.Steps, types.SpecStep{
			ID:          fmt.Sprintf("step-%d", n),
			Description: line,
			Code:        stepSkeleton(style, line),
		})
	}

	s.VerificationFixtures = []types.VerificationFixture{baselineFixture(id)}
	return s
}

// heuristicParams names parameters positionally when the algorithm leaves
// them unnamed. An algorithm with no declared parameters still gets one.
func heuristicParams(names []string, prefix, describe string) []types.SpecParam {
	count := len(names)
	if count == 0 {
		count = 1
	}
	params := make([]types.SpecParam, 0, count)
	for i := 0; i < count; i++ {
		name := ""
		if i < len(names) {
			name = strings.TrimSpace(names[i])
		}
		if name == "" {
			name = fmt.Sprintf("%s%d", prefix, i+1)
		}
		params = append(params, types.SpecParam{
			Name:         name,
			Type:         "any",
			Description:  fmt.Sprintf("%s %q.", describe, name),
			ExampleValue: "null",
		})
	}
	return params
}

func stepSkeleton(style skeletonStyle, description string) string {
	if style.stub == "" {
		return style.comment + description
	}
	return style.comment + description + "\n" + style.stub
}

// baselineFixture is the always-present verification fixture: an empty
// input and a null expected output, to be filled in by the implementer.
func baselineFixture(specID string) types.VerificationFixture {
	return types.VerificationFixture{
		ID:             specID + "-fixture-1",
		Input:          json.RawMessage("{}"),
		ExpectedOutput: json.RawMessage("null"),
		Description:    "Baseline fixture; replace with real input/output pairs.",
	}
}

// compactJSON collapses a fixture value onto one line so it survives the
// line-oriented fixture layout. A missing value becomes JSON null.
func compactJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(buf.String())
}

// oneLine collapses generator text onto one line so it survives the
// canonical Markdown layout, which keeps these fields line-oriented.
func oneLine(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// sourceConceptIDs collects the graph concepts derived from this algorithm.
func sourceConceptIDs(algo types.PaperAlgorithm, kg *types.PaperKnowledgeGraph) []string {
	if kg == nil {
		return nil
	}
	var ids []string
	for _, c := range kg.Concepts {
		for _, el := range c.SourceElements {
			if el == algo.ID {
				ids = append(ids, c.ID)
				break
			}
		}
	}
	return ids
}

// generatedSpec is the payload shape requested from the text generator.
type generatedSpec struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Inputs      []struct {
		Name         string `json:"name"`
		Type         string `json:"type"`
		Description  string `json:"description"`
		ExampleValue string `json:"exampleValue"`
	} `json:"inputs"`
	Outputs []struct {
		Name         string `json:"name"`
		Type         string `json:"type"`
		Description  string `json:"description"`
		ExampleValue string `json:"exampleValue"`
	} `json:"outputs"`
	Steps []struct {
		Description    string `json:"description"`
		Code           string `json:"code"`
		ExpectedResult string `json:"expectedResult"`
	} `json:"steps"`
	Fixtures []struct {
		Input          json.RawMessage `json:"input"`
		ExpectedOutput json.RawMessage `json:"expectedOutput"`
		Description    string          `json:"description"`
	} `json:"verificationFixtures"`
}

func (g *Generator) generateSpec(ctx context.Context, algo types.PaperAlgorithm, kg *types.PaperKnowledgeGraph, language string) (*types.ExecutableSpecification, error) {
	prompt, err := renderSpecPrompt(algo, language)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	timeout := g.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := textgen.GenerateWithRetry(ctx, g.gen, prompt, g.cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	var payload generatedSpec
	if err := textgen.DecodeInto(text, &payload); err != nil {
		return nil, err
	}

	id := SpecID(algo)
	s := &types.ExecutableSpecification{
		ID:               id,
		Title:            strings.TrimSpace(payload.Title),
		Description:      strings.TrimSpace(payload.Description),
		SourceConceptIDs: sourceConceptIDs(algo, kg),
	}
	if s.Title == "" {
		s.Title = algo.Name
	}

	for _, p := range payload.Inputs {
		s.Inputs = append(s.Inputs, types.SpecParam{Name: oneLine(p.Name), Type: oneLine(p.Type), Description: oneLine(p.Description), ExampleValue: oneLine(p.ExampleValue)})
	}
	for _, p := range payload.Outputs {
		s.Outputs = append(s.Outputs, types.SpecParam{Name: oneLine(p.Name), Type: oneLine(p.Type), Description: oneLine(p.Description), ExampleValue: oneLine(p.ExampleValue)})
	}
	for i, st := range payload.Steps {
		s.Steps = append(s.Steps, types.SpecStep{
			ID:             fmt.Sprintf("step-%d", i+1),
			Description:    oneLine(st.Description),
			Code:           st.Code,
			ExpectedResult: oneLine(st.ExpectedResult),
		})
	}
	for i, f := range payload.Fixtures {
		fixture := types.VerificationFixture{
			ID:             fmt.Sprintf("%s-fixture-%d", id, i+1),
			Input:          compactJSON(f.Input),
			ExpectedOutput: compactJSON(f.ExpectedOutput),
			Description:    oneLine(f.Description),
		}
		s.VerificationFixtures = append(s.VerificationFixtures, fixture)
	}

	// Every specification carries at least one fixture, whatever the
	// generator returned.
	if len(s.VerificationFixtures) == 0 {
		s.VerificationFixtures = []types.VerificationFixture{baselineFixture(id)}
	}

	return s, nil
}
