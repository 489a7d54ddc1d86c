// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ScanJSON extracts the first balanced JSON object or array embedded in
// text. Model output is not guaranteed to be strict JSON; responses often
// wrap the payload in prose or Markdown fences, so callers scan rather
// than decode directly.
func ScanJSON(text string) (json.RawMessage, error) {
	start := -1
	var open, close byte
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start = i
			open = text[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("no JSON object or array in %d bytes of text", len(text))
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if !json.Valid([]byte(candidate)) {
					return nil, fmt.Errorf("candidate JSON at offset %d is invalid", start)
				}
				return json.RawMessage(candidate), nil
			}
		}
	}
	return nil, fmt.Errorf("unbalanced JSON starting at offset %d", start)
}

// DecodeInto scans text for a JSON payload and unmarshals it into v.
func DecodeInto(text string, v any) error {
	raw, err := ScanJSON(text)
	if err != nil {
		return &GenerationError{Op: "parse", Err: err}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		preview := text
		if len(preview) > 120 {
			preview = strings.TrimSpace(preview[:120]) + "..."
		}
		return &GenerationError{Op: "parse", Err: fmt.Errorf("unmarshaling response %q: %w", preview, err)}
	}
	return nil
}
