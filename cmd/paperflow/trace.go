// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperflow/internal/report"
	"github.com/pdiddy/paperflow/internal/session"
	"github.com/pdiddy/paperflow/internal/trace"
	"github.com/pdiddy/paperflow/pkg/types"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Manage the traceability matrix (build, update, gaps)",
}

// --- build subcommand ---

var traceBuildCmd = &cobra.Command{
	Use:   "build [session-id] [source-dir]",
	Short: "Match paper elements against a source snapshot",
	Long: `Build scans a source directory, matches the session's paper elements
against it with confidence scoring, merges the resulting links into the
session's trace index, and exports traceability_matrix.json. Re-running
over unchanged inputs reproduces the same matrix.`,
	Args: cobra.ExactArgs(2),
	RunE: runTraceBuild,
}

func runTraceBuild(cmd *cobra.Command, args []string) error {
	sess, elements, err := traceSession(cmd, args[0])
	if err != nil {
		return err
	}

	files, err := trace.LoadSnapshot(args[1])
	if err != nil {
		return err
	}

	matcher := trace.NewMatcher(traceConfig(args[1]), logger)
	links := matcher.Match(elements, files)

	if err := mergeAndExport(sess, links); err != nil {
		return err
	}
	fmt.Printf("matched %d elements against %d files: %d links\n",
		len(elements), len(files), len(links))
	return nil
}

// --- update subcommand ---

var traceUpdateCmd = &cobra.Command{
	Use:   "update [session-id] [links.json]",
	Short: "Merge externally produced trace links into the matrix",
	Long: `Update consumes a JSON array of trace links and merges it into the
session's trace index. A link sharing (paperElementId, codeElement.id)
with a stored link replaces it; all other stored links are preserved.`,
	Args: cobra.ExactArgs(2),
	RunE: runTraceUpdate,
}

func runTraceUpdate(cmd *cobra.Command, args []string) error {
	sess, err := session.Open(sessionConfig(cmd), args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading links file: %w", err)
	}
	var links []types.TraceLink
	if err := json.Unmarshal(data, &links); err != nil {
		return &session.SerializationError{Path: args[1], Err: err}
	}

	if err := mergeAndExport(sess, links); err != nil {
		return err
	}
	fmt.Printf("merged %d links\n", len(links))
	return nil
}

// --- gaps subcommand ---

var traceGapsCmd = &cobra.Command{
	Use:   "gaps [session-id]",
	Short: "Report implementation gaps from the traceability matrix",
	Long: `Gaps partitions the paper's elements into fully implemented, partially
implemented, and unimplemented buckets, prints the coverage figure, and
writes the implementation plan.`,
	Args: cobra.ExactArgs(1),
	RunE: runTraceGaps,
}

func runTraceGaps(cmd *cobra.Command, args []string) error {
	sess, elements, err := traceSession(cmd, args[0])
	if err != nil {
		return err
	}

	var matrix types.TraceMatrix
	if err := sess.LoadJSON(sess.TraceMatrixPath(), &matrix); err != nil {
		return err
	}

	gaps := trace.AnalyzeGaps(elements, matrix.Links)
	plan := report.ImplementationPlan(gaps)
	if err := os.WriteFile(sess.ImplementationPlanPath(), []byte(plan), 0o644); err != nil {
		return fmt.Errorf("writing implementation plan: %w", err)
	}

	fmt.Printf("coverage: %.1f%% (%d/%d fully implemented, %d partial, %d missing)\n",
		gaps.Coverage*100, len(gaps.FullyImplemented), gaps.TotalElements,
		len(gaps.PartiallyImplemented), len(gaps.Unimplemented))
	return nil
}

// traceSession opens a session and collects its traceable paper elements.
func traceSession(cmd *cobra.Command, id string) (*session.Session, []trace.Element, error) {
	sess, err := session.Open(sessionConfig(cmd), id)
	if err != nil {
		return nil, nil, err
	}
	var content types.PaperContent
	if err := sess.LoadJSON(sess.PaperContentPath(), &content); err != nil {
		return nil, nil, err
	}
	return sess, trace.CollectElements(&content), nil
}

func traceConfig(sourceDir string) types.TraceConfig {
	return types.TraceConfig{
		SourceDir:     sourceDir,
		MinConfidence: viper.GetFloat64("trace.min_confidence"),
	}
}

func mergeAndExport(sess *session.Session, links []types.TraceLink) error {
	store, err := trace.NewStore(sess.TraceDBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Merge(ctx, links); err != nil {
		return err
	}
	return store.ExportJSON(ctx, sess.TraceMatrixPath())
}

func init() {
	traceCmd.AddCommand(traceBuildCmd)
	traceCmd.AddCommand(traceUpdateCmd)
	traceCmd.AddCommand(traceGapsCmd)
	rootCmd.AddCommand(traceCmd)
}
