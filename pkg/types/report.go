// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FixtureResult is the outcome of running one verification fixture.
type FixtureResult struct {
	ID     string `json:"id" yaml:"id"`
	Passed bool   `json:"passed" yaml:"passed"`

	// Actual and Expected hold the compared values when the fixture failed.
	Actual   string `json:"actual,omitempty" yaml:"actual,omitempty"`
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`

	// Error is set when the fixture could not be evaluated at all.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// VerificationResult holds the fixture outcomes for one specification.
type VerificationResult struct {
	SpecificationID string          `json:"specificationId" yaml:"specification_id"`
	Fixtures        []FixtureResult `json:"fixtures" yaml:"fixtures"`
}
