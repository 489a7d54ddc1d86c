// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline assembles the standard paper-to-implementation workflow:
// extraction, knowledge graph construction, specification generation,
// traceability matching, and gap reporting, in dependency order.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pdiddy/paperflow/internal/concepts"
	"github.com/pdiddy/paperflow/internal/graph"
	"github.com/pdiddy/paperflow/internal/ingest"
	"github.com/pdiddy/paperflow/internal/report"
	"github.com/pdiddy/paperflow/internal/session"
	"github.com/pdiddy/paperflow/internal/spec"
	"github.com/pdiddy/paperflow/internal/textgen"
	"github.com/pdiddy/paperflow/internal/trace"
	"github.com/pdiddy/paperflow/internal/workflow"
	"github.com/pdiddy/paperflow/pkg/types"
)

// Standard step ids.
const (
	StepExtraction     = "extraction"
	StepKnowledge      = "knowledge"
	StepSpecification  = "specification"
	StepImplementation = "implementation"
	StepValidation     = "validation"
)

// Deps carries the collaborators and configuration the standard pipeline
// needs. Generator may be nil; every stage then runs its deterministic
// fallback path.
type Deps struct {
	Extractor    ingest.Extractor
	Generator    textgen.Generator
	DocumentPath string

	Config types.PipelineConfig

	Logger *zap.Logger
}

// Build wires the five standard steps into a validated workflow for one
// session. Running the workflow produces every session artifact.
func Build(sess *session.Session, deps Deps) (*workflow.Workflow, error) {
	if sess == nil {
		return nil, fmt.Errorf("pipeline requires a session")
	}
	if deps.Extractor == nil {
		deps.Extractor = ingest.FileExtractor{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", sess.ID))

	steps := []*types.WorkflowStep{
		{ID: StepExtraction, Name: "Extract paper content", Type: types.StepExtraction},
		{ID: StepKnowledge, Name: "Build knowledge graph", Type: types.StepKnowledge,
			Dependencies: []string{StepExtraction}},
		{ID: StepSpecification, Name: "Generate executable specifications", Type: types.StepSpecification,
			Dependencies: []string{StepKnowledge}},
		{ID: StepImplementation, Name: "Match implementations", Type: types.StepImplementation,
			Dependencies: []string{StepSpecification}},
		{ID: StepValidation, Name: "Report implementation gaps", Type: types.StepValidation,
			Dependencies: []string{StepImplementation}},
	}

	w, err := workflow.New(steps, logger)
	if err != nil {
		return nil, err
	}

	p := &runner{sess: sess, deps: deps, logger: logger}
	w.SetRunner(StepExtraction, p.extract)
	w.SetRunner(StepKnowledge, p.buildKnowledge)
	w.SetRunner(StepSpecification, p.generateSpecs)
	w.SetValidator(StepSpecification, p.validateSpecs)
	w.SetRunner(StepImplementation, p.matchImplementations)
	w.SetRunner(StepValidation, p.reportGaps)
	return w, nil
}

type runner struct {
	sess   *session.Session
	deps   Deps
	logger *zap.Logger
}

func (p *runner) extract(ctx context.Context, _ *types.WorkflowStep) ([]string, error) {
	content, err := p.deps.Extractor.Extract(ctx, p.deps.DocumentPath)
	if err != nil {
		return nil, err
	}
	path := p.sess.PaperContentPath()
	if err := p.sess.SaveJSON(path, content); err != nil {
		return nil, err
	}
	p.logger.Info("paper extracted",
		zap.String("title", content.Info.Title),
		zap.Int("algorithms", len(content.Algorithms)))
	return []string{path}, nil
}

func (p *runner) buildKnowledge(ctx context.Context, _ *types.WorkflowStep) ([]string, error) {
	var content types.PaperContent
	if err := p.sess.LoadJSON(p.sess.PaperContentPath(), &content); err != nil {
		return nil, err
	}

	extractor := concepts.NewExtractor(p.deps.Generator, p.deps.Config.AI, p.logger)
	found, err := extractor.Extract(ctx, &content)
	if err != nil {
		return nil, err
	}

	identifier := concepts.NewIdentifier(p.deps.Generator, p.deps.Config.AI, p.logger)
	relationships, err := identifier.Identify(ctx, found, &content)
	if err != nil {
		return nil, err
	}

	assembler := graph.NewAssembler(p.logger, nil)
	kg := assembler.Assemble(found, relationships)
	assembler.Enhance(kg)

	path := p.sess.KnowledgeModelPath()
	if err := p.sess.SaveJSON(path, kg); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (p *runner) generateSpecs(ctx context.Context, _ *types.WorkflowStep) ([]string, error) {
	var content types.PaperContent
	if err := p.sess.LoadJSON(p.sess.PaperContentPath(), &content); err != nil {
		return nil, err
	}
	var kg types.PaperKnowledgeGraph
	if err := p.sess.LoadJSON(p.sess.KnowledgeModelPath(), &kg); err != nil {
		return nil, err
	}

	generator := spec.NewGenerator(p.deps.Generator, p.deps.Config.AI, p.logger)
	var artifacts []string
	for _, algo := range content.Algorithms {
		s, err := generator.Generate(ctx, algo, &kg, p.deps.Config.Generation.Language)
		if err != nil {
			return nil, err
		}
		path := p.sess.SpecPath(s.ID)
		if err := os.WriteFile(path, []byte(spec.Format(s)), 0o644); err != nil {
			return nil, fmt.Errorf("writing specification %s: %w", path, err)
		}
		artifacts = append(artifacts, path)
	}
	return artifacts, nil
}

// validateSpecs re-parses every written specification and checks the
// fixture invariant. A spec that does not survive its own round trip
// fails the step.
func (p *runner) validateSpecs(_ context.Context, _ *types.WorkflowStep) error {
	files, err := p.sess.SpecFiles()
	if err != nil {
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading specification %s: %w", path, err)
		}
		s, err := spec.Parse(string(data))
		if err != nil {
			return fmt.Errorf("specification %s does not parse: %w", path, err)
		}
		if len(s.VerificationFixtures) == 0 {
			return fmt.Errorf("specification %s has no verification fixtures", s.ID)
		}
	}
	return nil
}

func (p *runner) matchImplementations(ctx context.Context, _ *types.WorkflowStep) ([]string, error) {
	var content types.PaperContent
	if err := p.sess.LoadJSON(p.sess.PaperContentPath(), &content); err != nil {
		return nil, err
	}
	elements := trace.CollectElements(&content)

	var files []trace.SourceFile
	if p.deps.Config.Trace.SourceDir != "" {
		var err error
		files, err = trace.LoadSnapshot(p.deps.Config.Trace.SourceDir)
		if err != nil {
			return nil, err
		}
	}

	matcher := trace.NewMatcher(p.deps.Config.Trace, p.logger)
	links := matcher.Match(elements, files)

	store, err := trace.NewStore(p.sess.TraceDBPath())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.Merge(ctx, links); err != nil {
		return nil, err
	}
	path := p.sess.TraceMatrixPath()
	if err := store.ExportJSON(ctx, path); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (p *runner) reportGaps(_ context.Context, _ *types.WorkflowStep) ([]string, error) {
	var content types.PaperContent
	if err := p.sess.LoadJSON(p.sess.PaperContentPath(), &content); err != nil {
		return nil, err
	}
	var matrix types.TraceMatrix
	if err := p.sess.LoadJSON(p.sess.TraceMatrixPath(), &matrix); err != nil {
		return nil, err
	}

	gaps := trace.AnalyzeGaps(trace.CollectElements(&content), matrix.Links)
	plan := report.ImplementationPlan(gaps)

	path := p.sess.ImplementationPlanPath()
	if err := os.WriteFile(path, []byte(plan), 0o644); err != nil {
		return nil, fmt.Errorf("writing implementation plan: %w", err)
	}
	p.logger.Info("gap analysis complete",
		zap.Float64("coverage", gaps.Coverage),
		zap.Int("unimplemented", len(gaps.Unimplemented)))
	return []string{path}, nil
}
