// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Store persists trace links in a session-local SQLite database. Links are
// keyed by (paper_element_id, code_element_id); merging the same link twice
// updates the row in place, so repeated matching runs converge instead of
// accumulating duplicates.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens or creates the trace database at dbPath, creating the
// schema if it does not exist.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening trace database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trace_links (
			paper_element_id TEXT NOT NULL,
			code_element_id TEXT NOT NULL,
			code_type TEXT NOT NULL,
			code_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			line_start INTEGER NOT NULL,
			line_end INTEGER NOT NULL,
			link_type TEXT NOT NULL,
			confidence REAL NOT NULL,
			notes TEXT,
			PRIMARY KEY (paper_element_id, code_element_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trace_links_file ON trace_links(file_path)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Merge upserts a batch of links in one transaction. A link with a key
// already present replaces the stored grade, confidence, and location.
func (s *Store) Merge(ctx context.Context, links []types.TraceLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trace_links
			(paper_element_id, code_element_id, code_type, code_name, file_path, line_start, line_end, link_type, confidence, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(paper_element_id, code_element_id) DO UPDATE SET
			code_type=excluded.code_type, code_name=excluded.code_name,
			file_path=excluded.file_path, line_start=excluded.line_start,
			line_end=excluded.line_end, link_type=excluded.link_type,
			confidence=excluded.confidence, notes=excluded.notes`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, link := range links {
		_, err := stmt.ExecContext(ctx,
			link.PaperElementID, link.CodeElement.ID,
			link.CodeElement.Type, link.CodeElement.Name, link.CodeElement.FilePath,
			link.CodeElement.LineNumbers[0], link.CodeElement.LineNumbers[1],
			string(link.Type), link.Confidence, link.Notes,
		)
		if err != nil {
			return fmt.Errorf("upserting link %s -> %s: %w", link.PaperElementID, link.CodeElement.ID, err)
		}
	}

	return tx.Commit()
}

// Links returns every stored link, ordered by paper element id then code
// element id so exports are stable.
func (s *Store) Links(ctx context.Context) ([]types.TraceLink, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_element_id, code_element_id, code_type, code_name, file_path,
			line_start, line_end, link_type, confidence, notes
		 FROM trace_links
		 ORDER BY paper_element_id, code_element_id`)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer rows.Close()

	var links []types.TraceLink
	for rows.Next() {
		var link types.TraceLink
		var linkType string
		err := rows.Scan(
			&link.PaperElementID, &link.CodeElement.ID,
			&link.CodeElement.Type, &link.CodeElement.Name, &link.CodeElement.FilePath,
			&link.CodeElement.LineNumbers[0], &link.CodeElement.LineNumbers[1],
			&linkType, &link.Confidence, &link.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		link.Type = types.TraceLinkType(linkType)
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return links, nil
}

// Count returns the number of stored links.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM trace_links`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting links: %w", err)
	}
	return n, nil
}

// ExportJSON writes the traceability matrix artifact to path.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	links, err := s.Links(ctx)
	if err != nil {
		return err
	}
	if links == nil {
		links = []types.TraceLink{}
	}

	data, err := json.MarshalIndent(types.TraceMatrix{Links: links}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding matrix: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing matrix %s: %w", path, err)
	}
	return nil
}
