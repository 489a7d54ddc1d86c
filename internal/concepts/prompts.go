// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import (
	"bytes"
	"text/template"
)

// conceptPromptTmpl asks the generator for additional concepts beyond the
// algorithm-derived ones. The response must be a JSON object with a
// "concepts" array.
var conceptPromptTmpl = template.Must(template.New("concepts").Parse(`You are a research paper analysis system. Read the following paper summary and identify the key concepts it introduces or relies on.

For each concept, provide:
- name: the concept name as used in the paper
- description: one or two sentences summarizing it
- type: one of "method", "dataStructure", "parameter", "concept"

Do not list the paper's named algorithms; those are handled separately.

Respond with a JSON object containing a "concepts" array. Do not include any text outside the JSON object.

Example response:
{"concepts": [{"name": "Attention Mechanism", "description": "Weighted combination of encoder states.", "type": "method"}]}

Paper summary:
{{.Summary}}
`))

// relationshipPromptTmpl asks the generator for typed edges between the
// already-identified concepts.
var relationshipPromptTmpl = template.Must(template.New("relationships").Parse(`You are a research paper analysis system. Given the concepts identified in a paper and the paper's section text, identify directed relationships between the concepts.

Valid relationship types: uses, implements, extends, dependsOn, refines, references, contains, inherits, associates.

For each relationship, provide:
- source: the name of the source concept (must be one of the listed concepts)
- target: the name of the target concept (must be one of the listed concepts)
- type: one of the valid relationship types
- description: one sentence explaining the relationship
- evidence: an array of short quotes from the paper supporting it

Respond with a JSON object containing a "relationships" array. Do not include any text outside the JSON object.

Example response:
{"relationships": [{"source": "QuickSort", "target": "Partition Scheme", "type": "uses", "description": "QuickSort partitions the array each round.", "evidence": ["QuickSort first partitions the input"]}]}

Concepts:
{{range .Concepts}}- {{.Name}} ({{.Type}})
{{end}}
Paper sections:
{{.Sections}}
`))

func renderConceptPrompt(summary string) (string, error) {
	var buf bytes.Buffer
	err := conceptPromptTmpl.Execute(&buf, struct{ Summary string }{Summary: summary})
	return buf.String(), err
}

type relationshipPromptData struct {
	Concepts []promptConcept
	Sections string
}

type promptConcept struct {
	Name string
	Type string
}

func renderRelationshipPrompt(data relationshipPromptData) (string, error) {
	var buf bytes.Buffer
	err := relationshipPromptTmpl.Execute(&buf, data)
	return buf.String(), err
}
