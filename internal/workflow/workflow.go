// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow runs dependency-ordered pipeline steps. A workflow is
// validated before anything executes, runs its steps one at a time in a
// scan loop, and freezes once it reaches a terminal status.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paperflow/pkg/types"
)

// CycleError reports a dependency cycle found during validation. No step
// of a cyclic workflow ever executes.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// StepError reports the step that failed a workflow run.
type StepError struct {
	StepID string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.StepID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Runner executes one step and returns the artifact paths it produced.
type Runner func(ctx context.Context, step *types.WorkflowStep) ([]string, error)

// Validator checks a completed step. A non-nil return converts the step's
// success into a failure.
type Validator func(ctx context.Context, step *types.WorkflowStep) error

// Workflow owns one run's state. Construct with New, attach runners, then
// call Run once. State, Pause, and Resume are safe to call from other
// goroutines while the run is in flight.
type Workflow struct {
	mu         sync.Mutex
	state      types.WorkflowState
	runners    map[string]Runner
	validators map[string]Validator
	resume     chan struct{}
	logger     *zap.Logger
}

// New validates the step set and builds a workflow in the initializing
// state. Duplicate ids, unknown dependencies, and dependency cycles are
// all rejected here, before any step can run. logger may be nil for a
// no-op logger.
func New(steps []*types.WorkflowStep, logger *zap.Logger) (*Workflow, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("workflow has no steps")
	}

	byID := make(map[string]*types.WorkflowStep, len(steps))
	for _, step := range steps {
		if step.ID == "" {
			return nil, fmt.Errorf("step with empty id")
		}
		if _, dup := byID[step.ID]; dup {
			return nil, fmt.Errorf("duplicate step id %q", step.ID)
		}
		byID[step.ID] = step
	}
	for _, step := range steps {
		for _, dep := range step.Dependencies {
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("step %q depends on unknown step %q", step.ID, dep)
			}
		}
	}
	if cycle := findCycle(steps, byID); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}

	for _, step := range steps {
		step.Status = types.StepPending
	}
	return &Workflow{
		state: types.WorkflowState{
			Steps:     steps,
			Artifacts: []string{},
			Status:    types.WorkflowInitializing,
		},
		runners:    make(map[string]Runner),
		validators: make(map[string]Validator),
		logger:     logger,
	}, nil
}

// findCycle runs a three-color depth-first search over the dependency
// graph. It returns the cycle path when one exists, nil otherwise.
func findCycle(steps []*types.WorkflowStep, byID map[string]*types.WorkflowStep) []string {
	const (
		white = iota // unvisited
		gray         // on the current path
		black        // fully explored
	)
	color := make(map[string]int, len(steps))

	var path []string
	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = gray
		path = append(path, id)
		for _, dep := range byID[id].Dependencies {
			switch color[dep] {
			case gray:
				// Close the loop for the error message.
				start := 0
				for i, p := range path {
					if p == dep {
						start = i
						break
					}
				}
				return append(append([]string{}, path[start:]...), dep)
			case white:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		color[id] = black
		path = path[:len(path)-1]
		return nil
	}

	for _, step := range steps {
		if color[step.ID] == white {
			if cycle := visit(step.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// SetRunner attaches the executor for one step. A step with no runner
// completes immediately with no artifacts.
func (w *Workflow) SetRunner(stepID string, run Runner) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.runners[stepID] = run
}

// SetValidator attaches a post-completion check for one step.
func (w *Workflow) SetValidator(stepID string, validate Validator) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.validators[stepID] = validate
}

// State returns a snapshot of the run state. Steps are copied, so the
// caller cannot mutate the workflow through the snapshot.
func (w *Workflow) State() types.WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := w.state
	snapshot.Steps = make([]*types.WorkflowStep, len(w.state.Steps))
	for i, step := range w.state.Steps {
		copied := *step
		snapshot.Steps[i] = &copied
	}
	snapshot.Artifacts = append([]string{}, w.state.Artifacts...)
	return snapshot
}

// Pause stops the scan loop from scheduling the next step. The step in
// flight, if any, runs to completion first. Pausing is only valid while
// the workflow is running.
func (w *Workflow) Pause() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Status != types.WorkflowRunning {
		return fmt.Errorf("cannot pause workflow in status %q", w.state.Status)
	}
	w.state.Status = types.WorkflowPaused
	w.resume = make(chan struct{})
	w.logger.Info("workflow paused")
	return nil
}

// Resume lets a paused workflow continue scheduling.
func (w *Workflow) Resume() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Status != types.WorkflowPaused {
		return fmt.Errorf("cannot resume workflow in status %q", w.state.Status)
	}
	w.state.Status = types.WorkflowRunning
	close(w.resume)
	w.resume = nil
	w.logger.Info("workflow resumed")
	return nil
}

// Run executes the workflow to a terminal status. Steps run one at a time
// in declaration order; a step starts only once all its dependencies have
// completed. The first step failure fails the whole run.
func (w *Workflow) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.state.Status != types.WorkflowInitializing {
		w.mu.Unlock()
		return fmt.Errorf("workflow already started (status %q)", w.state.Status)
	}
	w.state.Status = types.WorkflowRunning
	w.mu.Unlock()

	for {
		if err := w.waitIfPaused(ctx); err != nil {
			return w.fail("", err)
		}

		step := w.nextReady()
		if step == nil {
			break
		}

		if err := w.runStep(ctx, step); err != nil {
			return w.fail(step.ID, err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if pending := w.pendingLocked(); pending > 0 {
		// Validation guarantees a DAG, so this indicates corrupted state
		// rather than a bad configuration.
		w.state.Status = types.WorkflowFailed
		w.state.Error = fmt.Sprintf("no runnable step with %d steps still pending", pending)
		return fmt.Errorf("%s", w.state.Error)
	}
	w.state.Status = types.WorkflowCompleted
	w.state.CurrentStep = ""
	w.recomputeProgressLocked()
	w.logger.Info("workflow completed", zap.Int("steps", len(w.state.Steps)))
	return nil
}

// nextReady scans steps in declaration order and returns the first
// pending step whose dependencies are all completed.
func (w *Workflow) nextReady() *types.WorkflowStep {
	w.mu.Lock()
	defer w.mu.Unlock()

	completed := make(map[string]bool, len(w.state.Steps))
	for _, step := range w.state.Steps {
		if step.Status == types.StepCompleted {
			completed[step.ID] = true
		}
	}
	for _, step := range w.state.Steps {
		if step.Status != types.StepPending {
			continue
		}
		ready := true
		for _, dep := range step.Dependencies {
			if !completed[dep] {
				ready = false
				break
			}
		}
		if ready {
			return step
		}
	}
	return nil
}

func (w *Workflow) runStep(ctx context.Context, step *types.WorkflowStep) error {
	w.mu.Lock()
	start := time.Now()
	step.Status = types.StepRunning
	step.Metadata.StartTime = &start
	w.state.CurrentStep = step.ID
	run := w.runners[step.ID]
	validate := w.validators[step.ID]
	w.mu.Unlock()

	w.logger.Info("step started", zap.String("step", step.ID), zap.String("type", string(step.Type)))

	var artifacts []string
	var err error
	if run != nil {
		artifacts, err = run(ctx, step)
	}
	if err == nil && validate != nil {
		err = validate(ctx, step)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	end := time.Now()
	step.Metadata.EndTime = &end
	step.Metadata.Duration = end.Sub(start)

	if err != nil {
		step.Status = types.StepFailed
		step.Metadata.Error = err.Error()
		w.recomputeProgressLocked()
		w.logger.Error("step failed", zap.String("step", step.ID), zap.Error(err))
		return err
	}

	step.Status = types.StepCompleted
	step.Artifacts = append(step.Artifacts, artifacts...)
	w.state.Artifacts = append(w.state.Artifacts, artifacts...)
	w.recomputeProgressLocked()
	w.logger.Info("step completed",
		zap.String("step", step.ID),
		zap.Duration("duration", step.Metadata.Duration),
		zap.Float64("progress", w.state.Progress))
	return nil
}

// waitIfPaused blocks between steps while the workflow is paused.
func (w *Workflow) waitIfPaused(ctx context.Context) error {
	for {
		w.mu.Lock()
		if w.state.Status != types.WorkflowPaused {
			w.mu.Unlock()
			return ctx.Err()
		}
		resume := w.resume
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-resume:
		}
	}
}

// fail moves the workflow to the terminal failed status and wraps the
// cause in a StepError when a step is responsible.
func (w *Workflow) fail(stepID string, err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Status = types.WorkflowFailed
	w.state.Error = err.Error()
	if stepID == "" {
		return err
	}
	return &StepError{StepID: stepID, Err: err}
}

func (w *Workflow) pendingLocked() int {
	n := 0
	for _, step := range w.state.Steps {
		if step.Status == types.StepPending {
			n++
		}
	}
	return n
}

func (w *Workflow) recomputeProgressLocked() {
	completed := 0
	for _, step := range w.state.Steps {
		if step.Status == types.StepCompleted {
			completed++
		}
	}
	w.state.Progress = float64(completed) / float64(len(w.state.Steps)) * 100
}
