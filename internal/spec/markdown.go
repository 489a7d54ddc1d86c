// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spec

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Section headings of the canonical specification Markdown layout. The
// layout round-trips: Parse(Format(s)) reproduces s exactly.
const (
	headInputs   = "## Inputs"
	headOutputs  = "## Outputs"
	headSteps    = "## Implementation Steps"
	headFixtures = "## Verification Fixtures"
	headConcepts = "## Source Concepts"
)

// frontMatter carries the identifying fields of the Markdown header.
type frontMatter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// Format renders a specification as canonical Markdown.
func Format(s *types.ExecutableSpecification) string {
	var b strings.Builder

	fm, _ := yaml.Marshal(frontMatter{ID: s.ID, Title: s.Title})
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")

	if s.Description != "" {
		for _, line := range strings.Split(s.Description, "\n") {
			b.WriteString(escapeBodyLine(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeParamTable(&b, headInputs, s.Inputs)
	writeParamTable(&b, headOutputs, s.Outputs)

	b.WriteString(headSteps)
	b.WriteString("\n")
	for _, step := range s.Steps {
		fmt.Fprintf(&b, "\n### %s: %s\n\n", step.ID, step.Description)
		fence := codeFence(step.Code)
		b.WriteString(fence)
		b.WriteString("\n")
		if step.Code != "" {
			b.WriteString(step.Code)
			b.WriteString("\n")
		}
		b.WriteString(fence)
		b.WriteString("\n")
		if step.ExpectedResult != "" {
			fmt.Fprintf(&b, "\nExpected result: %s\n", step.ExpectedResult)
		}
	}
	b.WriteString("\n")

	b.WriteString(headFixtures)
	b.WriteString("\n")
	for _, f := range s.VerificationFixtures {
		fmt.Fprintf(&b, "\n### %s\n\n", f.ID)
		fmt.Fprintf(&b, "- Input: `%s`\n", string(f.Input))
		fmt.Fprintf(&b, "- Expected output: `%s`\n", string(f.ExpectedOutput))
		if f.Description != "" {
			fmt.Fprintf(&b, "- Description: %s\n", f.Description)
		}
	}
	b.WriteString("\n")

	b.WriteString(headConcepts)
	b.WriteString("\n\n")
	for _, id := range s.SourceConceptIDs {
		fmt.Fprintf(&b, "- %s\n", id)
	}

	return b.String()
}

func writeParamTable(b *strings.Builder, heading string, params []types.SpecParam) {
	b.WriteString(heading)
	b.WriteString("\n\n")
	b.WriteString("| Name | Type | Description | Example |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, p := range params {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			escapeCell(p.Name), escapeCell(p.Type), escapeCell(p.Description), escapeCell(p.ExampleValue))
	}
	b.WriteString("\n")
}

// Parse reads canonical specification Markdown back into a specification.
func Parse(text string) (*types.ExecutableSpecification, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, fmt.Errorf("missing front-matter delimiter")
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("unterminated front matter")
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}
	if fm.ID == "" {
		return nil, fmt.Errorf("front matter has no id")
	}

	s := &types.ExecutableSpecification{ID: fm.ID, Title: fm.Title}

	const (
		inDescription = iota
		inInputs
		inOutputs
		inSteps
		inFixtures
		inConcepts
	)
	section := inDescription

	var descLines []string
	var step *types.SpecStep
	var fixture *types.VerificationFixture
	fenceLen := 0
	var codeLines []string

	flushStep := func() {
		if step != nil {
			s.Steps = append(s.Steps, *step)
			step = nil
		}
	}
	flushFixture := func() {
		if fixture != nil {
			s.VerificationFixtures = append(s.VerificationFixtures, *fixture)
			fixture = nil
		}
	}

	for _, line := range lines[end+1:] {
		trimmed := strings.TrimSpace(line)

		if fenceLen == 0 {
			switch trimmed {
			case headInputs:
				section = inInputs
				continue
			case headOutputs:
				section = inOutputs
				continue
			case headSteps:
				section = inSteps
				continue
			case headFixtures:
				flushStep()
				section = inFixtures
				continue
			case headConcepts:
				flushFixture()
				section = inConcepts
				continue
			}
		}

		switch section {
		case inDescription:
			descLines = append(descLines, unescapeBodyLine(line))

		case inInputs, inOutputs:
			if !strings.HasPrefix(trimmed, "|") || isTableChrome(trimmed) {
				continue
			}
			cells := splitRow(trimmed)
			if len(cells) != 4 {
				return nil, fmt.Errorf("malformed table row %q", trimmed)
			}
			p := types.SpecParam{Name: cells[0], Type: cells[1], Description: cells[2], ExampleValue: cells[3]}
			if section == inInputs {
				s.Inputs = append(s.Inputs, p)
			} else {
				s.Outputs = append(s.Outputs, p)
			}

		case inSteps:
			switch {
			case fenceLen > 0:
				if fenceRun(trimmed) >= fenceLen {
					fenceLen = 0
					if step != nil {
						step.Code = strings.Join(codeLines, "\n")
					}
					continue
				}
				codeLines = append(codeLines, line)
			case strings.HasPrefix(trimmed, "### "):
				flushStep()
				id, desc, ok := strings.Cut(strings.TrimPrefix(trimmed, "### "), ": ")
				if !ok {
					return nil, fmt.Errorf("malformed step heading %q", trimmed)
				}
				step = &types.SpecStep{ID: id, Description: desc}
			case fenceRun(trimmed) >= 3:
				fenceLen = fenceRun(trimmed)
				codeLines = nil
			case strings.HasPrefix(trimmed, "Expected result: "):
				if step != nil {
					step.ExpectedResult = strings.TrimPrefix(trimmed, "Expected result: ")
				}
			}

		case inFixtures:
			switch {
			case strings.HasPrefix(trimmed, "### "):
				flushFixture()
				fixture = &types.VerificationFixture{ID: strings.TrimPrefix(trimmed, "### ")}
			case strings.HasPrefix(trimmed, "- Input: `") && strings.HasSuffix(trimmed, "`"):
				if fixture != nil {
					fixture.Input = json.RawMessage(trimmed[len("- Input: `") : len(trimmed)-1])
				}
			case strings.HasPrefix(trimmed, "- Expected output: `") && strings.HasSuffix(trimmed, "`"):
				if fixture != nil {
					fixture.ExpectedOutput = json.RawMessage(trimmed[len("- Expected output: `") : len(trimmed)-1])
				}
			case strings.HasPrefix(trimmed, "- Description: "):
				if fixture != nil {
					fixture.Description = strings.TrimPrefix(trimmed, "- Description: ")
				}
			}

		case inConcepts:
			if strings.HasPrefix(trimmed, "- ") {
				s.SourceConceptIDs = append(s.SourceConceptIDs, strings.TrimPrefix(trimmed, "- "))
			}
		}
	}
	flushStep()
	flushFixture()

	s.Description = strings.TrimSpace(strings.Join(descLines, "\n"))
	return s, nil
}

// canonicalHeadings is the set of section headings recognized by Parse.
var canonicalHeadings = map[string]bool{
	headInputs:   true,
	headOutputs:  true,
	headSteps:    true,
	headFixtures: true,
	headConcepts: true,
}

// codeFence returns a backtick fence strictly longer than any backtick run
// inside code, so embedded fences cannot terminate the block early.
func codeFence(code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r != '`' {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}

// fenceRun returns the length of trimmed when it consists solely of
// backticks, and 0 otherwise.
func fenceRun(trimmed string) int {
	if trimmed == "" {
		return 0
	}
	for _, r := range trimmed {
		if r != '`' {
			return 0
		}
	}
	return len(trimmed)
}

// escapeBodyLine backslash-escapes description lines that would otherwise
// read as canonical section headings on re-parse. A line that is already an
// escaped heading gains one more backslash so unescaping removes exactly one.
func escapeBodyLine(line string) string {
	if isHeadingLine(line) {
		return `\` + line
	}
	return line
}

func unescapeBodyLine(line string) string {
	if strings.HasPrefix(line, `\`) && isHeadingLine(line[1:]) {
		return line[1:]
	}
	return line
}

func isHeadingLine(line string) bool {
	return canonicalHeadings[strings.TrimSpace(strings.TrimLeft(line, `\`))]
}

// isTableChrome reports whether the line is a table header or separator
// rather than a data row.
func isTableChrome(line string) bool {
	return line == "| Name | Type | Description | Example |" ||
		strings.HasPrefix(line, "| ---")
}

// escapeCell protects backslashes and pipes so table cells survive the
// round trip.
func escapeCell(cell string) string {
	cell = strings.ReplaceAll(cell, `\`, `\\`)
	return strings.ReplaceAll(cell, "|", `\|`)
}

// splitRow splits a table row into unescaped, trimmed cells.
func splitRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	var cells []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			if r != '|' && r != '\\' {
				cur.WriteByte('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteByte('\\')
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}
