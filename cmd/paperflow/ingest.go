// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperflow/internal/ingest"
	"github.com/pdiddy/paperflow/internal/session"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [document]",
	Short: "Start a session from a pre-extracted paper document",
	Long: `Ingest validates a pre-extracted paper JSON document, creates a new
session, and stores the paper content as the session's immutable input
artifact. The printed session id is the handle for every later stage.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	content, err := ingest.FileExtractor{}.Extract(context.Background(), args[0])
	if err != nil {
		return err
	}

	sess, err := session.New(sessionConfig(cmd))
	if err != nil {
		return err
	}
	if err := sess.SaveJSON(sess.PaperContentPath(), content); err != nil {
		return err
	}

	fmt.Printf("session %s\n", sess.ID)
	fmt.Printf("  title:      %s\n", content.Info.Title)
	fmt.Printf("  algorithms: %d\n", len(content.Algorithms))
	fmt.Printf("  equations:  %d\n", len(content.Equations))
	return nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
