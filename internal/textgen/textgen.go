// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textgen abstracts the text-generation collaborator used by the
// LLM-assisted pipeline stages. Stages receive a Generator at construction
// time; a nil Generator selects the stage's heuristic fallback path.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Generator produces free-form text for a prompt. Implementations must
// honour context cancellation; callers bound every call with a timeout.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationError marks a recoverable generation-capability failure.
// Stages degrade to their heuristic fallback when they see one; it is
// never fatal to a pipeline run.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// GenerateWithRetry calls the generator with exponential backoff. The delay
// doubles each attempt starting from backoffBase. If the context is
// cancelled during a backoff wait the context error is returned.
func GenerateWithRetry(ctx context.Context, gen Generator, prompt string, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := gen.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// A cancelled or expired context will not recover; stop early.
		if ctx.Err() != nil {
			return "", fmt.Errorf("after %d attempts: %w", attempt+1, lastErr)
		}
	}
	return "", &GenerationError{Op: "retry", Err: fmt.Errorf("after %d retries: %w", maxRetries, lastErr)}
}
