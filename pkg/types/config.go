// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds shared settings for stages that call a text-generation API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout bounds each individual generation call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SessionConfig holds settings for session storage.
type SessionConfig struct {
	// SessionsDir is the base directory holding one subdirectory per session.
	SessionsDir string `json:"sessions_dir" yaml:"sessions_dir"`
}

// TraceConfig holds settings for the traceability matcher.
type TraceConfig struct {
	// SourceDir is the root of the source snapshot to match against.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// MinConfidence is the threshold below which no trace link is emitted
	// (default 0.5).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
}

// GenerationConfig holds settings for specification generation.
type GenerationConfig struct {
	// Language selects the placeholder-code comment style for generated
	// specification steps (e.g. "go", "python", "typescript"). It is never
	// interpreted semantically.
	Language string `json:"language" yaml:"language"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	AI         AIConfig         `json:"ai" yaml:"ai"`
	Session    SessionConfig    `json:"session" yaml:"session"`
	Trace      TraceConfig      `json:"trace" yaml:"trace"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}
