// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trace links paper elements to the code that implements them and
// reports implementation gaps. Matching is deterministic: re-running over
// unchanged inputs reproduces the same link set.
package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Confidence grades assigned by the matcher. Links scoring below the
// configured minimum are omitted entirely: a weak match is a null result,
// not an error.
const (
	confidenceDeclared  = 0.9
	confidenceUsed      = 0.8
	confidenceMentioned = 0.6
	confidenceLoose     = 0.55

	// DefaultMinConfidence is the emission threshold when the config does
	// not specify one.
	DefaultMinConfidence = 0.5
)

// Element is one traceable paper element: an algorithm or an equation
// with a stable id.
type Element struct {
	ID   string
	Name string
	Kind string
}

// CollectElements gathers the traceable elements of a paper.
func CollectElements(content *types.PaperContent) []Element {
	var elements []Element
	for _, algo := range content.Algorithms {
		elements = append(elements, Element{ID: algo.ID, Name: algo.Name, Kind: "algorithm"})
	}
	for _, eq := range content.Equations {
		if eq.Name == "" {
			continue
		}
		elements = append(elements, Element{ID: eq.ID, Name: eq.Name, Kind: "equation"})
	}
	return elements
}

// SourceFile is one file of the source snapshot to match against.
type SourceFile struct {
	Path    string
	Content string
}

// sourceExtensions lists the file types scanned for implementations.
var sourceExtensions = map[string]bool{
	".go": true, ".py": true, ".ts": true, ".tsx": true, ".js": true,
	".jsx": true, ".java": true, ".c": true, ".h": true, ".cpp": true,
	".hpp": true, ".rs": true, ".rb": true, ".kt": true, ".scala": true,
}

// LoadSnapshot reads the source files under root, sorted by path so the
// snapshot order is stable.
func LoadSnapshot(root string) ([]SourceFile, error) {
	var files []SourceFile
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !sourceExtensions[filepath.Ext(path)] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, SourceFile{Path: filepath.ToSlash(rel), Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking snapshot %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Matcher scores paper elements against a source snapshot.
type Matcher struct {
	minConfidence float64
	logger        *zap.Logger
}

// NewMatcher constructs a matcher. logger may be nil for a no-op logger.
func NewMatcher(cfg types.TraceConfig, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	min := cfg.MinConfidence
	if min <= 0 {
		min = DefaultMinConfidence
	}
	return &Matcher{minConfidence: min, logger: logger}
}

// Match emits one trace link per (element, file) pair whose evidence
// clears the confidence threshold. Elements are visited in input order
// and files in the given (sorted) order, so the result is reproducible.
func (m *Matcher) Match(elements []Element, files []SourceFile) []types.TraceLink {
	var links []types.TraceLink
	for _, el := range elements {
		for _, file := range files {
			link, ok := m.matchFile(el, file)
			if ok {
				links = append(links, link)
			}
		}
	}
	m.logger.Info("matched paper elements against snapshot",
		zap.Int("elements", len(elements)),
		zap.Int("files", len(files)),
		zap.Int("links", len(links)))
	return links
}

func (m *Matcher) matchFile(el Element, file SourceFile) (types.TraceLink, bool) {
	identifier := identifierForm(el.Name)
	if identifier == "" {
		return types.TraceLink{}, false
	}

	exact := regexp.MustCompile(`\b` + regexp.QuoteMeta(identifier) + `\b`)
	loose := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(identifier) + `\b`)
	decl := regexp.MustCompile(`\b(func|def|function|class|fn|struct|type)\s+` + regexp.QuoteMeta(identifier) + `\b`)

	lines := strings.Split(file.Content, "\n")
	var exactLines, looseLines []int
	declared := false
	for i, line := range lines {
		switch {
		case exact.MatchString(line):
			exactLines = append(exactLines, i+1)
			if decl.MatchString(line) {
				declared = true
			}
		case loose.MatchString(line):
			looseLines = append(looseLines, i+1)
		}
	}

	var (
		confidence float64
		linkType   types.TraceLinkType
		notes      string
		hitLines   []int
		codeType   string
	)
	switch {
	// A declaration alone is not enough: strong evidence is the declaration
	// plus at least one further use of the identifier.
	case declared && len(exactLines) >= 2:
		confidence = confidenceDeclared
		linkType = types.TraceImplements
		notes = fmt.Sprintf("declaration of %s with matching identifier", identifier)
		hitLines = exactLines
		codeType = "function"
	case len(exactLines) >= 2:
		confidence = confidenceUsed
		linkType = types.TraceImplements
		notes = fmt.Sprintf("identifier %s used %d times", identifier, len(exactLines))
		hitLines = exactLines
		codeType = "identifier"
	case len(exactLines) == 1:
		confidence = confidenceMentioned
		linkType = types.TracePartiallyImplements
		notes = fmt.Sprintf("single mention of identifier %s", identifier)
		hitLines = exactLines
		codeType = "identifier"
	case len(looseLines) > 0:
		confidence = confidenceLoose
		linkType = types.TracePartiallyImplements
		notes = fmt.Sprintf("case-insensitive match for %s", identifier)
		hitLines = looseLines
		codeType = "identifier"
	default:
		return types.TraceLink{}, false
	}

	if confidence < m.minConfidence {
		return types.TraceLink{}, false
	}

	return types.TraceLink{
		PaperElementID: el.ID,
		CodeElement: types.CodeElement{
			ID:          file.Path + "#" + identifier,
			Type:        codeType,
			Name:        identifier,
			FilePath:    file.Path,
			LineNumbers: [2]int{hitLines[0], hitLines[len(hitLines)-1]},
		},
		Type:       linkType,
		Confidence: confidence,
		Notes:      notes,
	}, true
}

// identifierForm squashes a paper element name into the identifier shape
// source code would use: "Quick Sort" becomes "QuickSort".
func identifierForm(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
