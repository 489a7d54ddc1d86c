// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// SpecParam describes one input or output of an executable specification.
type SpecParam struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`

	// ExampleValue is a sample value rendered in documentation.
	ExampleValue string `json:"exampleValue" yaml:"example_value"`
}

// SpecStep is one implementation step of an executable specification.
type SpecStep struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`

	// Code is a placeholder skeleton in the requested target-language style.
	Code string `json:"code" yaml:"code"`

	// ExpectedResult describes the observable effect of the step, if known.
	ExpectedResult string `json:"expectedResult,omitempty" yaml:"expected_result,omitempty"`
}

// VerificationFixture is one input/expected-output pair used to check an
// implementation of the specification.
type VerificationFixture struct {
	ID string `json:"id" yaml:"id"`

	// Input is the fixture input as a JSON value.
	Input json.RawMessage `json:"input" yaml:"input"`

	// ExpectedOutput is the expected result as a JSON value.
	ExpectedOutput json.RawMessage `json:"expectedOutput" yaml:"expected_output"`

	Description string `json:"description" yaml:"description"`
}

// ExecutableSpecification describes an algorithm or complex concept as
// inputs, outputs, implementation steps, and verification fixtures.
// Every specification carries at least one verification fixture.
type ExecutableSpecification struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`

	Inputs  []SpecParam `json:"inputs" yaml:"inputs"`
	Outputs []SpecParam `json:"outputs" yaml:"outputs"`
	Steps   []SpecStep  `json:"steps" yaml:"steps"`

	// SourceConceptIDs lists the knowledge-graph concepts this specification covers.
	SourceConceptIDs []string `json:"sourceConceptIds" yaml:"source_concept_ids"`

	VerificationFixtures []VerificationFixture `json:"verificationFixtures" yaml:"verification_fixtures"`
}
