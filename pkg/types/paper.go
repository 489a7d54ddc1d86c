// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperInfo holds bibliographic metadata for an extracted paper.
type PaperInfo struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`
}

// PaperSection is one section of the paper body.
type PaperSection struct {
	// ID is a stable identifier for the section (e.g. "sec-3").
	ID string `json:"id" yaml:"id"`

	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Content is the section body text.
	Content string `json:"content" yaml:"content"`
}

// PaperAlgorithm describes an algorithm presented in the paper.
type PaperAlgorithm struct {
	// ID is a stable identifier for the algorithm (e.g. "algo-1").
	ID string `json:"id" yaml:"id"`

	// Name is the algorithm name as given in the paper.
	Name string `json:"name" yaml:"name"`

	// Description summarizes what the algorithm does.
	Description string `json:"description" yaml:"description"`

	// Pseudocode is the algorithm body, one operation per line.
	Pseudocode string `json:"pseudocode" yaml:"pseudocode"`

	// Inputs names the algorithm's parameters, in order.
	Inputs []string `json:"inputs" yaml:"inputs"`

	// Outputs names the algorithm's results, in order.
	Outputs []string `json:"outputs" yaml:"outputs"`
}

// PaperEquation is a numbered equation with a stable identifier.
type PaperEquation struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"expression" yaml:"expression"`
}

// PaperFigure is a figure reference with its caption.
type PaperFigure struct {
	ID      string `json:"id" yaml:"id"`
	Caption string `json:"caption" yaml:"caption"`
}

// PaperTable is a table reference with its caption.
type PaperTable struct {
	ID      string `json:"id" yaml:"id"`
	Caption string `json:"caption" yaml:"caption"`
}

// PaperCitation is one entry from the paper's reference list.
type PaperCitation struct {
	// Key is the reference label as it appears in the paper (e.g. "1", "Smith2020").
	Key string `json:"key" yaml:"key"`

	// Text is the formatted reference entry.
	Text string `json:"text" yaml:"text"`
}

// PaperContent is the structured extraction of one academic paper, as
// produced by the document-extraction collaborator. It is created once
// per session and never mutated afterwards.
type PaperContent struct {
	Info       PaperInfo        `json:"info" yaml:"info"`
	Sections   []PaperSection   `json:"sections" yaml:"sections"`
	Algorithms []PaperAlgorithm `json:"algorithms" yaml:"algorithms"`
	Equations  []PaperEquation  `json:"equations" yaml:"equations"`
	Figures    []PaperFigure    `json:"figures" yaml:"figures"`
	Tables     []PaperTable     `json:"tables" yaml:"tables"`
	Citations  []PaperCitation  `json:"citations" yaml:"citations"`
}
