// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperflow/internal/report"
	"github.com/pdiddy/paperflow/internal/session"
	"github.com/pdiddy/paperflow/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render session reports",
}

var reportVerifyCmd = &cobra.Command{
	Use:   "verify [session-id] [results.json]",
	Short: "Render the verification report from fixture results",
	Long: `Verify consumes fixture results produced by running a specification's
verification fixtures against an implementation, and renders the
session's verification report with an aggregate pass rate.`,
	Args: cobra.ExactArgs(2),
	RunE: runReportVerify,
}

func runReportVerify(cmd *cobra.Command, args []string) error {
	sess, err := session.Open(sessionConfig(cmd), args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading results file: %w", err)
	}
	var results []types.VerificationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return &session.SerializationError{Path: args[1], Err: err}
	}

	text := report.Verification(results)
	if err := os.WriteFile(sess.VerificationReportPath(), []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing verification report: %w", err)
	}

	passed, total := report.PassRate(results)
	fmt.Printf("verification: %d/%d fixtures passed\n", passed, total)
	fmt.Println(sess.VerificationReportPath())
	return nil
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List existing sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := session.List(sessionConfig(cmd))
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	reportCmd.AddCommand(reportVerifyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sessionsCmd)
}
