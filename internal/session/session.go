// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session provides the session-scoped context threaded through
// every pipeline call. A session owns one paper, one knowledge graph, and
// the artifacts derived from them; distinct sessions are fully independent.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Canonical artifact names within a session directory.
const (
	PaperContentFile       = "paper_content.json"
	KnowledgeModelFile     = "knowledge_model.json"
	TraceMatrixFile        = "traceability_matrix.json"
	ImplementationPlanFile = "implementation_plan.md"
	VerificationReportFile = "verification_report.md"

	specsDir = "executable_specs"
	indexDir = "index"
	traceDB  = "trace.db"
)

// SerializationError marks a malformed persisted artifact encountered on
// read. It is surfaced to the caller rather than silently degraded.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("malformed artifact %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Session locates one pipeline run's artifacts on disk.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// Dir is the session's artifact directory.
	Dir string
}

// New creates a fresh session directory under cfg.SessionsDir.
func New(cfg types.SessionConfig) (*Session, error) {
	id := uuid.NewString()
	dir := filepath.Join(cfg.SessionsDir, id)
	s := &Session{ID: id, Dir: dir}
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open returns the session with the given id, which must already exist.
func Open(cfg types.SessionConfig, id string) (*Session, error) {
	dir := filepath.Join(cfg.SessionsDir, id)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening session %s: %w", id, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening session %s: %s is not a directory", id, dir)
	}
	s := &Session{ID: id, Dir: dir}
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns the session ids under cfg.SessionsDir in sorted order.
func List(cfg types.SessionConfig) ([]string, error) {
	entries, err := os.ReadDir(cfg.SessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Session) ensureDirs() error {
	for _, dir := range []string{s.Dir, s.SpecsDir(), filepath.Join(s.Dir, indexDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating session directory %s: %w", dir, err)
		}
	}
	return nil
}

// PaperContentPath is the immutable extracted-paper artifact.
func (s *Session) PaperContentPath() string { return filepath.Join(s.Dir, PaperContentFile) }

// KnowledgeModelPath is the assembled knowledge-graph artifact.
func (s *Session) KnowledgeModelPath() string { return filepath.Join(s.Dir, KnowledgeModelFile) }

// TraceMatrixPath is the exported traceability-matrix artifact.
func (s *Session) TraceMatrixPath() string { return filepath.Join(s.Dir, TraceMatrixFile) }

// ImplementationPlanPath is the generated implementation plan.
func (s *Session) ImplementationPlanPath() string {
	return filepath.Join(s.Dir, ImplementationPlanFile)
}

// VerificationReportPath is the generated verification report.
func (s *Session) VerificationReportPath() string {
	return filepath.Join(s.Dir, VerificationReportFile)
}

// SpecsDir holds one Markdown file per executable specification.
func (s *Session) SpecsDir() string { return filepath.Join(s.Dir, specsDir) }

// SpecPath is the Markdown file for one specification id.
func (s *Session) SpecPath(specID string) string {
	return filepath.Join(s.SpecsDir(), specID+".md")
}

// TraceDBPath is the SQLite trace index for this session.
func (s *Session) TraceDBPath() string { return filepath.Join(s.Dir, indexDir, traceDB) }

// SpecFiles returns the specification Markdown paths in sorted order.
func (s *Session) SpecFiles() ([]string, error) {
	entries, err := os.ReadDir(s.SpecsDir())
	if err != nil {
		return nil, fmt.Errorf("reading specs directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, filepath.Join(s.SpecsDir(), e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// SaveJSON writes v as indented JSON to path.
func (s *Session) SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads path into v. A malformed artifact surfaces as a
// SerializationError.
func (s *Session) LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &SerializationError{Path: path, Err: err}
	}
	return nil
}
