// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spec

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/paperflow/pkg/types"
)

// specPromptTmpl asks the generator for a complete specification in one
// call: inputs, outputs, steps, and fixtures.
var specPromptTmpl = template.Must(template.New("spec").Parse(`You are an algorithm specification system. Produce an executable specification for the following algorithm from an academic paper.

Algorithm: {{.Name}}
Description: {{.Description}}
Declared inputs: {{.Inputs}}
Declared outputs: {{.Outputs}}
Pseudocode:
{{.Pseudocode}}

Target language for placeholder code: {{.Language}} (affects only comment style, not semantics).

Respond with a JSON object with these fields:
- title: the algorithm name
- description: one or two sentences
- inputs: array of {"name", "type", "description", "exampleValue"}
- outputs: array of {"name", "type", "description", "exampleValue"}
- steps: array of {"description", "code", "expectedResult"}, one per pseudocode operation, code being a short placeholder skeleton
- verificationFixtures: array of {"input", "expectedOutput", "description"}, where input and expectedOutput are JSON values exercising the algorithm

Do not include any text outside the JSON object.
`))

func renderSpecPrompt(algo types.PaperAlgorithm, language string) (string, error) {
	if language == "" {
		language = "pseudo"
	}
	var buf bytes.Buffer
	err := specPromptTmpl.Execute(&buf, struct {
		Name, Description, Inputs, Outputs, Pseudocode, Language string
	}{
		Name:        algo.Name,
		Description: algo.Description,
		Inputs:      strings.Join(algo.Inputs, ", "),
		Outputs:     strings.Join(algo.Outputs, ", "),
		Pseudocode:  algo.Pseudocode,
		Language:    language,
	})
	return buf.String(), err
}
