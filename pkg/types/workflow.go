// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StepType categorizes a workflow step by pipeline stage.
type StepType string

const (
	StepExtraction     StepType = "extraction"
	StepKnowledge      StepType = "knowledge"
	StepSpecification  StepType = "specification"
	StepImplementation StepType = "implementation"
	StepValidation     StepType = "validation"
)

// StepStatus is the lifecycle state of a single workflow step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// WorkflowStatus is the lifecycle state of a workflow run.
// Completed and failed are terminal.
type WorkflowStatus string

const (
	WorkflowInitializing WorkflowStatus = "initializing"
	WorkflowRunning      WorkflowStatus = "running"
	WorkflowPaused       WorkflowStatus = "paused"
	WorkflowCompleted    WorkflowStatus = "completed"
	WorkflowFailed       WorkflowStatus = "failed"
)

// StepMetadata records timing and failure details for one step execution.
type StepMetadata struct {
	StartTime *time.Time    `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime   *time.Time    `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	Duration  time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// WorkflowStep is one dependency-ordered unit of pipeline work.
// A step may enter running only once every dependency is completed.
type WorkflowStep struct {
	ID   string   `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
	Type StepType `json:"type" yaml:"type"`

	Status StepStatus `json:"status" yaml:"status"`

	// Dependencies lists step IDs that must complete before this step runs.
	Dependencies []string `json:"dependencies" yaml:"dependencies"`

	// Artifacts lists paths produced by this step.
	Artifacts []string `json:"artifacts" yaml:"artifacts"`

	Metadata StepMetadata `json:"metadata" yaml:"metadata"`
}

// WorkflowState is the mutable run state of one workflow. It is mutated
// continuously during a run and becomes immutable once terminal.
type WorkflowState struct {
	Steps       []*WorkflowStep `json:"steps" yaml:"steps"`
	CurrentStep string          `json:"currentStep,omitempty" yaml:"current_step,omitempty"`

	// Artifacts aggregates all step artifacts in production order.
	Artifacts []string `json:"artifacts" yaml:"artifacts"`

	Status WorkflowStatus `json:"status" yaml:"status"`

	// Progress is completed steps over total steps, scaled to [0,100].
	Progress float64 `json:"progress" yaml:"progress"`

	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
