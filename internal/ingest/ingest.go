// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest defines the document-extraction collaborator boundary.
// The pipeline consumes pre-extracted paper content; actual PDF/LaTeX
// extraction happens in an external service behind the Extractor interface.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"encoding/json"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Extraction failure issues.
const (
	IssueUnsupportedFormat = "unsupported-format"
	IssueUnreadable        = "unreadable-document"
	IssueEmptyDocument     = "empty-document"
)

// ExtractionError marks a document that could not be turned into paper
// content. It is fatal to session start.
type ExtractionError struct {
	Issue       string
	Description string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %s", e.Issue, e.Description)
}

// Extractor turns a document path into structured paper content.
type Extractor interface {
	Extract(ctx context.Context, documentPath string) (*types.PaperContent, error)
}

// FileExtractor reads pre-extracted paper content from a JSON document
// produced by the external extraction service.
type FileExtractor struct{}

// Extract reads and validates a pre-extracted PaperContent JSON file.
func (FileExtractor) Extract(_ context.Context, documentPath string) (*types.PaperContent, error) {
	if ext := strings.ToLower(filepath.Ext(documentPath)); ext != ".json" {
		return nil, &ExtractionError{
			Issue:       IssueUnsupportedFormat,
			Description: fmt.Sprintf("cannot extract %q documents; expected pre-extracted JSON", ext),
		}
	}

	data, err := os.ReadFile(documentPath)
	if err != nil {
		return nil, &ExtractionError{
			Issue:       IssueUnreadable,
			Description: fmt.Sprintf("reading %s: %v", documentPath, err),
		}
	}

	var content types.PaperContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, &ExtractionError{
			Issue:       IssueUnreadable,
			Description: fmt.Sprintf("parsing %s: %v", documentPath, err),
		}
	}

	if strings.TrimSpace(content.Info.Title) == "" {
		return nil, &ExtractionError{
			Issue:       IssueEmptyDocument,
			Description: "paper content has no title",
		}
	}

	return &content, nil
}
