// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperflow/internal/pipeline"
	"github.com/pdiddy/paperflow/internal/session"
	"github.com/pdiddy/paperflow/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [document]",
	Short: "Run the full pipeline on a pre-extracted paper document",
	Long: `Run creates a session and executes the standard workflow end to end:
extraction, knowledge graph construction, specification generation,
traceability matching, and gap reporting. Every session artifact is
produced in one pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	sess, err := session.New(sessionConfig(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("session %s\n", sess.ID)

	sourceDir, _ := cmd.Flags().GetString("source-dir")
	language, _ := cmd.Flags().GetString("language")
	if language == "" {
		language = viper.GetString("generation.language")
	}

	cfg := aiConfig()
	w, err := pipeline.Build(sess, pipeline.Deps{
		Generator:    textGenerator(cfg),
		DocumentPath: args[0],
		Config: types.PipelineConfig{
			AI:         cfg,
			Session:    sessionConfig(cmd),
			Trace:      traceConfig(sourceDir),
			Generation: types.GenerationConfig{Language: language},
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	runErr := w.Run(context.Background())

	state := w.State()
	for _, step := range state.Steps {
		marker := " "
		switch step.Status {
		case types.StepCompleted:
			marker = "x"
		case types.StepFailed:
			marker = "!"
		}
		fmt.Printf("[%s] %-16s %s\n", marker, step.ID, step.Metadata.Duration)
	}
	fmt.Printf("progress: %.0f%%\n", state.Progress)

	if runErr != nil {
		return runErr
	}
	for _, artifact := range state.Artifacts {
		fmt.Println(artifact)
	}
	return nil
}

func init() {
	runCmd.Flags().String("source-dir", "", "source snapshot to match implementations against")
	runCmd.Flags().String("language", "", "target language for specification skeletons")
	rootCmd.AddCommand(runCmd)
}
