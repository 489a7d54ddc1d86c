// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CodeElement identifies a code construct that implements paper content.
type CodeElement struct {
	// ID is unique within a source snapshot (file path plus element name).
	ID string `json:"id" yaml:"id"`

	// Type is the construct kind (e.g. "function", "class", "file").
	Type string `json:"type" yaml:"type"`

	// Name is the identifier as written in the source.
	Name string `json:"name" yaml:"name"`

	// FilePath locates the source file within the snapshot.
	FilePath string `json:"filePath" yaml:"file_path"`

	// LineNumbers is the [start, end] line range of the element.
	LineNumbers [2]int `json:"lineNumbers" yaml:"line_numbers"`
}

// TraceLinkType grades how completely a code element realizes a paper element.
type TraceLinkType string

const (
	TraceImplements          TraceLinkType = "implements"
	TracePartiallyImplements TraceLinkType = "partiallyImplements"
	TraceReferences          TraceLinkType = "references"
)

// TraceLink is a scored mapping from one paper element to one code element.
// Links are keyed uniquely by (PaperElementID, CodeElement.ID).
type TraceLink struct {
	PaperElementID string        `json:"paperElementId" yaml:"paper_element_id"`
	CodeElement    CodeElement   `json:"codeElement" yaml:"code_element"`
	Type           TraceLinkType `json:"type" yaml:"type"`

	// Confidence is a float between 0.0 and 1.0.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	Notes string `json:"notes" yaml:"notes"`
}

// TraceMatrix is the persisted traceability artifact for one session.
type TraceMatrix struct {
	Links []TraceLink `json:"links" yaml:"links"`
}

// GapReport partitions paper elements by implementation status.
type GapReport struct {
	FullyImplemented     []string `json:"fullyImplemented" yaml:"fully_implemented"`
	PartiallyImplemented []string `json:"partiallyImplemented" yaml:"partially_implemented"`
	Unimplemented        []string `json:"unimplemented" yaml:"unimplemented"`

	// TotalElements counts all paper elements considered.
	TotalElements int `json:"totalElements" yaml:"total_elements"`

	// Coverage is |FullyImplemented| / TotalElements, 0 when no elements exist.
	Coverage float64 `json:"coverage" yaml:"coverage"`
}
